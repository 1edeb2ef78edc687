// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/olegiv/folio/internal/cache"
	"github.com/olegiv/folio/internal/handler"
	"github.com/olegiv/folio/internal/handler/api"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/scheduler"
	"github.com/olegiv/folio/internal/store"
	"github.com/olegiv/folio/internal/version"
)

const shutdownTimeout = 30 * time.Second

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
}

func serve(ctx context.Context) error {
	info := version.Get()
	slog.Info("starting folio", "version", info.Version, "commit", info.GitCommit, "env", cfg.Env)

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if !skipMigrations {
		slog.Info("running database migrations")
		if err := store.Migrate(db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}
	slog.Info("database ready")

	st := store.NewStore(db)
	enableEventLog(st)

	if cfg.DoSeed {
		if _, err := store.SeedAdmin(ctx, st, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}

	sched := scheduler.New(st, scheduler.Config{
		CleanupSchedule: cfg.CleanupSchedule,
		EventRetention:  cfg.EventRetention,
	}, slog.Default())
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	responseCache := cache.New(ctx, cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTL,
		MaxSize:    cfg.CacheMaxSize,
	})
	defer func() {
		if err := responseCache.Close(); err != nil {
			slog.Error("error closing response cache", "error", err)
		}
	}()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	h := api.NewHandler(api.Deps{
		Store:           st,
		LoginProtection: loginProtection,
		Cache:           responseCache,
	}, api.Config{
		CookieName:         cfg.AuthCookieName,
		SessionTTL:         cfg.SessionTTL,
		SecureCookies:      !cfg.IsDevelopment(),
		ExposeErrorDetails: cfg.ExposeErrorDetails,
		Version:            info.Version,
	})
	health := handler.NewHealthHandler(st, h.Authenticator(), info.Version)

	router := api.NewRouter(h, health, api.RouterConfig{
		Logger:         slog.Default(),
		IsDevelopment:  cfg.IsDevelopment(),
		CSRFKey:        []byte(cfg.SecretKey),
		TrustedOrigins: cfg.TrustedOriginHosts(),
		CORSOrigins:    cfg.CORSOrigins,
		PublicMaxAge:   cfg.PublicMaxAge,
		PublicSWR:      cfg.PublicSWR,
		ResponseCache:  responseCache,
		CacheTTL:       cfg.CacheTTL,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
