// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/olegiv/folio/internal/logging"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var ctxID string
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = logging.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := serve(h, http.MethodGet, "/api/status")

	id := rr.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("request ID %q is not a UUID", id)
	}
	if ctxID != id {
		t.Errorf("context request ID = %q, want %q", ctxID, id)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line: %v (%s)", err, buf.String())
	}
	if line["status"] != float64(http.StatusTeapot) || line["bytes"] != float64(15) || line["request_id"] != id {
		t.Errorf("log line = %v", line)
	}
}

func TestRequestLogger_ClientID(t *testing.T) {
	h := RequestLogger(slog.New(slog.DiscardHandler))(okHandler())

	rr := serve(h, http.MethodGet, "/", func(r *http.Request) { r.Header.Set(RequestIDHeader, "edge-123") })
	if got := rr.Header().Get(RequestIDHeader); got != "edge-123" {
		t.Errorf("request ID = %q, want edge-123", got)
	}

	long := string(bytes.Repeat([]byte("x"), maxRequestIDLength+1))
	rr = serve(h, http.MethodGet, "/", func(r *http.Request) { r.Header.Set(RequestIDHeader, long) })
	if got := rr.Header().Get(RequestIDHeader); got == long {
		t.Error("oversized client request ID was echoed")
	}
}
