// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/olegiv/folio/internal/auth"
)

// Default admin credentials
const (
	DefaultAdminUsername = "admin"

	generatedPasswordLength   = 20
	generatedPasswordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// SeedAdmin creates the initial admin account when no admin exists yet.
// An empty password is replaced by a generated one, which is logged once.
// It reports whether an account was created.
func SeedAdmin(ctx context.Context, q Querier, username, password string) (bool, error) {
	count, err := q.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("checking for admin user: %w", err)
	}
	if count > 0 {
		slog.Info("admin user already exists, skipping seed")
		return false, nil
	}

	if username == "" {
		username = DefaultAdminUsername
	}
	generated := password == ""
	if generated {
		password, err = gonanoid.Generate(generatedPasswordAlphabet, generatedPasswordLength)
		if err != nil {
			return false, fmt.Errorf("generating password: %w", err)
		}
	}
	if !auth.ValidNewPassword(password) {
		return false, fmt.Errorf("admin password must be at least %d characters", auth.MinPasswordLength)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing password: %w", err)
	}

	admin, err := q.CreateAdmin(ctx, CreateAdminParams{
		Username:     username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return false, fmt.Errorf("creating admin user: %w", err)
	}

	if generated {
		slog.Info("created admin user with generated password, change it after first login",
			"id", admin.ID,
			"username", admin.Username,
			"password", password,
		)
	} else {
		slog.Info("created admin user", "id", admin.ID, "username", admin.Username)
	}
	return true, nil
}
