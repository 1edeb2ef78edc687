// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/olegiv/folio/internal/config"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "folio dev") {
		t.Errorf("output = %q", out.String())
	}
}

func TestNewLogHandler(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"text", "msg=hello"},
		{"json", `"msg":"hello"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			c := config.Defaults()
			c.LogFormat = tt.format
			slog.New(newLogHandler(&buf, &c)).Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("log line = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}

	var buf bytes.Buffer
	c := config.Defaults()
	c.LogLevel = "warn"
	slog.New(newLogHandler(&buf, &c)).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}
