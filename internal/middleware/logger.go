// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/folio/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds a client-supplied request ID.
const maxRequestIDLength = 64

// RequestLogger assigns each request an ID, echoes it in the response and
// logs one line per request once the handler returns.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" || len(id) > maxRequestIDLength {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			rec := &countingRecorder{statusRecorder: statusRecorder{ResponseWriter: w, status: http.StatusOK}}
			next.ServeHTTP(rec, r.WithContext(logging.WithRequestID(r.Context(), id)))

			level := slog.LevelInfo
			if strings.HasPrefix(r.URL.Path, "/health") {
				level = slog.LevelDebug
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("request_id", id),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int("bytes", rec.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("ip", GetClientIP(r)),
			)
		})
	}
}

// countingRecorder records status and response size.
type countingRecorder struct {
	statusRecorder
	bytes int
}

func (cr *countingRecorder) Write(b []byte) (int, error) {
	n, err := cr.statusRecorder.Write(b)
	cr.bytes += n
	return n, err
}
