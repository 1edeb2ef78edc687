// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/folio/internal/auth"
	"github.com/olegiv/folio/internal/testutil"
)

func TestRequireAdmin(t *testing.T) {
	mem := testutil.NewMemStore()
	testutil.SeedAdmin(t, mem, "admin", "secret1")
	authn := auth.NewAuthenticator(mem, auth.DefaultCookieName)

	var seen auth.Identity
	var body string
	handler := RequireAdmin(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetIdentity(r)
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))

	validCookie, err := auth.NewLoginCookie(auth.DefaultCookieName, "admin", time.Now().Add(time.Hour), false)
	if err != nil {
		t.Fatalf("NewLoginCookie: %v", err)
	}
	expiredCookie, err := auth.NewLoginCookie(auth.DefaultCookieName, "admin", time.Now().Add(-time.Hour), false)
	if err != nil {
		t.Fatalf("NewLoginCookie: %v", err)
	}

	tests := []struct {
		name        string
		prepare     func(r *http.Request)
		body        string
		wantStatus  int
		wantCarrier auth.Carrier
	}{
		{"no credentials", func(*http.Request) {}, "", http.StatusUnauthorized, ""},
		{"bearer admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer admin") }, "", http.StatusOK, auth.CarrierBearer},
		{"bearer unknown", func(r *http.Request) { r.Header.Set("Authorization", "Bearer mallory") }, "", http.StatusUnauthorized, ""},
		{"valid cookie", func(r *http.Request) { r.AddCookie(validCookie) }, "", http.StatusOK, auth.CarrierCookie},
		{"expired cookie", func(r *http.Request) { r.AddCookie(expiredCookie) }, "", http.StatusUnauthorized, ""},
		{"body username", func(r *http.Request) { r.Header.Set("Content-Type", "application/json") },
			`{"username":"admin","title_en":"x"}`, http.StatusOK, auth.CarrierBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, body = auth.Identity{}, ""
			req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(tt.body))
			tt.prepare(req)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if !strings.Contains(rr.Body.String(), `"code":"UNAUTHORIZED"`) {
					t.Errorf("body = %s", rr.Body.String())
				}
				return
			}
			if seen.Carrier != tt.wantCarrier || seen.Username != "admin" {
				t.Errorf("identity = %+v", seen)
			}
			if body != tt.body {
				t.Errorf("downstream body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestGetIdentity_Missing(t *testing.T) {
	if _, ok := GetIdentity(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Error("GetIdentity() ok = true without RequireAdmin")
	}
}
