// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveWithSecurityHeaders(cfg SecurityHeadersConfig) *httptest.ResponseRecorder {
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	return rr
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS string
	}{
		{"production", false, "max-age=31536000; includeSubDomains"},
		{"development", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveWithSecurityHeaders(DefaultSecurityHeadersConfig(tt.isDev))

			if got := rr.Header().Get("Strict-Transport-Security"); got != tt.wantHSTS {
				t.Errorf("HSTS = %q, want %q", got, tt.wantHSTS)
			}
			want := map[string]string{
				"X-Content-Type-Options":  "nosniff",
				"X-Frame-Options":         "DENY",
				"Referrer-Policy":         "strict-origin-when-cross-origin",
				"Content-Security-Policy": "default-src 'none'; base-uri 'none'; form-action 'none'; frame-ancestors 'none'",
				"Permissions-Policy":      "browsing-topics=(), camera=(), geolocation=(), microphone=(), payment=()",
			}
			for k, v := range want {
				if got := rr.Header().Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestSecurityHeadersHSTSDisabled(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.HSTSMaxAge = 0
	if got := serveWithSecurityHeaders(cfg).Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS = %q, want empty", got)
	}
}

func TestBuildCSP(t *testing.T) {
	got := buildCSP(map[string]string{
		"img-src":     "'self' data:",
		"default-src": "'self'",
		"connect-src": "'self'",
	})
	want := "default-src 'self'; connect-src 'self'; img-src 'self' data:"
	if got != want {
		t.Errorf("buildCSP() = %q, want %q", got, want)
	}
}
