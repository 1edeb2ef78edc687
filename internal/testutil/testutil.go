// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the folio project.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/olegiv/folio/internal/auth"
	"github.com/olegiv/folio/internal/store"
)

// TestLogger creates a logger that discards everything below error level.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SeedAdmin stores an admin with an argon2id hash of password.
func SeedAdmin(t *testing.T, s store.Querier, username, password string) store.Admin {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	admin, err := s.CreateAdmin(context.Background(), store.CreateAdminParams{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	return admin
}
