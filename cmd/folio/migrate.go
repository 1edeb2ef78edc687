// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/olegiv/folio/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

func init() {
	migrateCmd.AddCommand(
		migrationCommand("up", "Apply all pending migrations", store.Migrate),
		migrationCommand("down", "Roll back the most recent migration", store.MigrateDown),
		migrationCommand("status", "Show the state of every migration", store.MigrateStatus),
	)
}

func migrationCommand(use, short string, run func(*sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db)
			return run(db)
		},
	}
}
