// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

func setRequired(t *testing.T) {
	t.Helper()
	os.Clearenv()
	t.Setenv("FOLIO_DATABASE_URL", "postgres://folio@localhost/folio?sslmode=disable")
	t.Setenv("FOLIO_SECRET_KEY", testSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.AuthCookieName != "admin-auth" {
		t.Errorf("AuthCookieName = %q, want %q", cfg.AuthCookieName, "admin-auth")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if !cfg.ExposeErrorDetails {
		t.Error("ExposeErrorDetails should default to true")
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache should be false without FOLIO_REDIS_URL")
	}
	if cfg.EventRetention != 30*24*time.Hour || cfg.CleanupSchedule != "0 3 * * *" {
		t.Errorf("EventRetention = %v, CleanupSchedule = %q", cfg.EventRetention, cfg.CleanupSchedule)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	t.Setenv("FOLIO_SERVER_HOST", "0.0.0.0")
	t.Setenv("FOLIO_SERVER_PORT", "3000")
	t.Setenv("FOLIO_ENV", "production")
	t.Setenv("FOLIO_LOG_LEVEL", "debug")
	t.Setenv("FOLIO_SESSION_TTL", "2h")
	t.Setenv("FOLIO_CORS_ORIGINS", "https://example.com,http://localhost:3000")
	t.Setenv("FOLIO_EXPOSE_ERROR_DETAILS", "false")
	t.Setenv("FOLIO_EVENT_RETENTION", "0s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() should be false in production")
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins = %v, want 2 entries", cfg.CORSOrigins)
	}
	if cfg.ExposeErrorDetails {
		t.Error("ExposeErrorDetails should be false")
	}
	if cfg.EventRetention != 0 {
		t.Errorf("EventRetention = %v, want 0", cfg.EventRetention)
	}

	hosts := cfg.TrustedOriginHosts()
	if hosts[0] != "example.com" || hosts[1] != "localhost:3000" {
		t.Errorf("TrustedOriginHosts() = %v", hosts)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	setRequired(t)
	os.Unsetenv("FOLIO_DATABASE_URL")
	t.Setenv("FOLIO_SERVER_PORT", "9999")

	path := filepath.Join(t.TempDir(), "folio.toml")
	content := `
database_url = "postgres://file@localhost/folio"
server_port = 4000
log_format = "json"
session_ttl = "12h"
cors_origins = ["https://file.example"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://file@localhost/folio" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.ServerPort != 9999 {
		t.Errorf("ServerPort = %d, env should win over file", cfg.ServerPort)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("SessionTTL = %v, want 12h", cfg.SessionTTL)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		unset   string
		wantErr string
	}{
		{
			name:    "missing database url",
			unset:   "FOLIO_DATABASE_URL",
			wantErr: "FOLIO_DATABASE_URL",
		},
		{
			name:    "short secret",
			env:     map[string]string{"FOLIO_SECRET_KEY": "short"},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "weak secret",
			env:     map[string]string{"FOLIO_SECRET_KEY": "change-me-to-32-byte-secret-key!"},
			wantErr: "known default",
		},
		{
			name:    "bad log format",
			env:     map[string]string{"FOLIO_LOG_FORMAT": "xml"},
			wantErr: "FOLIO_LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.unset != "" {
				os.Unsetenv(tt.unset)
			}
			_, err := Load("")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single character class should fail")
	}
	if !hasMinimumEntropy(testSecret) {
		t.Error("mixed secret should pass")
	}
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]string{"debug": "DEBUG", "warn": "WARN", "error": "ERROR", "": "INFO"} {
		cfg := Config{LogLevel: level}
		if got := cfg.SlogLevel().String(); got != want {
			t.Errorf("SlogLevel(%q) = %s, want %s", level, got, want)
		}
	}
}
