// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig(t *testing.T) {
	prod := DefaultCSRFConfig(testCSRFKey, []string{"folio.example"}, false)
	if len(prod.TrustedOrigins) != 1 || prod.TrustedOrigins[0] != "folio.example" {
		t.Errorf("production TrustedOrigins = %v", prod.TrustedOrigins)
	}

	dev := DefaultCSRFConfig(testCSRFKey, nil, true)
	for _, origin := range dev.TrustedOrigins {
		if strings.HasPrefix(origin, "http") {
			t.Errorf("TrustedOrigin %q should be host:port, not a URL", origin)
		}
	}
	if len(dev.TrustedOrigins) == 0 {
		t.Error("development should trust localhost origins")
	}
}

func csrfTestHandler() http.Handler {
	protect := CSRF(DefaultCSRFConfig(testCSRFKey, nil, false))
	return SkipCSRFForBearer(protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
}

func TestCSRF_CrossSiteRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/articles", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()

	csrfTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), CodeForbidden) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestCSRF_AllowedRequests(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		headers map[string]string
	}{
		{"same origin", http.MethodPost, map[string]string{"Sec-Fetch-Site": "same-origin"}},
		{"non-browser client", http.MethodPost, nil},
		{"safe method cross-site", http.MethodGet, map[string]string{"Sec-Fetch-Site": "cross-site", "Origin": "https://evil.example"}},
		{"bearer cross-site", http.MethodPost, map[string]string{
			"Sec-Fetch-Site": "cross-site",
			"Origin":         "https://evil.example",
			"Authorization":  "Bearer admin",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/articles", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			csrfTestHandler().ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rr.Code)
			}
		})
	}
}
