// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command folio runs the personal-site content API.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/olegiv/folio/internal/config"
	"github.com/olegiv/folio/internal/logging"
	"github.com/olegiv/folio/internal/store"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "folio <command>",
	Short:         "Content API for a bilingual personal site",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		// .env is optional; real environment variables win.
		_ = godotenv.Load()

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		slog.SetDefault(slog.New(newLogHandler(os.Stdout, cfg)))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (default $FOLIO_CONFIG_FILE)")
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// newLogHandler builds the console handler selected by LogFormat.
func newLogHandler(w io.Writer, cfg *config.Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// enableEventLog mirrors WARN and ERROR records into the event_log table.
func enableEventLog(events logging.EventWriter) {
	handler := logging.NewEventLogHandler(newLogHandler(os.Stdout, cfg), events)
	slog.SetDefault(slog.New(handler))
	slog.Info("event log integration enabled", "min_level", "warn")
}

// openDB connects to PostgreSQL with the configured pool size.
func openDB(ctx context.Context) (*sql.DB, error) {
	dbCfg := store.DefaultDBConfig()
	if cfg.DBMaxOpenConns > 0 {
		dbCfg.MaxOpenConns = cfg.DBMaxOpenConns
		dbCfg.MaxIdleConns = min(dbCfg.MaxIdleConns, cfg.DBMaxOpenConns)
	}

	slog.Info("connecting to database")
	db, err := store.NewDBWithConfig(ctx, cfg.DatabaseURL, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return db, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database connection", "error", err)
	}
}
