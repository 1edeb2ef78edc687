// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/folio/internal/auth"
	"github.com/olegiv/folio/internal/store"
)

func login(ts *testServer, username, password string) *http.Response {
	ts.t.Helper()
	rr := ts.do(http.MethodPost, "/api/admin/login", LoginRequest{Username: username, Password: password})
	return rr.Result()
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/api/admin/login", LoginRequest{Username: testAdmin, Password: testPassword})
	assertStatus(t, rr, http.StatusOK)

	resp := decode[LoginResponse](t, rr)
	if !resp.Success || resp.Username != testAdmin {
		t.Errorf("response = %+v", resp)
	}
	if resp.ExpiresAt.Before(time.Now().Add(23 * time.Hour)) {
		t.Errorf("expiresAt = %v, want about 24h ahead", resp.ExpiresAt.Time)
	}

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.DefaultCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("login did not set the admin cookie")
	}
	if !cookie.HttpOnly {
		t.Error("admin cookie is not HttpOnly")
	}

	state, err := auth.DecodeCookieValue(cookie.Value)
	if err != nil {
		t.Fatalf("DecodeCookieValue: %v", err)
	}
	if !state.IsLoggedIn || state.Username != testAdmin {
		t.Errorf("cookie state = %+v", state)
	}

	admin, err := ts.mem.GetAdminByUsername(context.Background(), testAdmin)
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if admin.LastLoginAt == nil {
		t.Error("last_login_at not recorded")
	}
}

func TestLogin_Failures(t *testing.T) {
	ts := newTestServer(t)

	wrong := ts.do(http.MethodPost, "/api/admin/login", LoginRequest{Username: testAdmin, Password: "nope-nope"})
	unknown := ts.do(http.MethodPost, "/api/admin/login", LoginRequest{Username: "ghost", Password: "nope-nope"})

	assertStatus(t, wrong, http.StatusUnauthorized)
	assertStatus(t, unknown, http.StatusUnauthorized)
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("wrong password %s differs from unknown user %s", wrong.Body.String(), unknown.Body.String())
	}
	if got := errorOf(t, wrong).Error; got != msgLoginFailed {
		t.Errorf("error = %q", got)
	}
	if len(wrong.Result().Cookies()) != 0 {
		t.Error("failed login set a cookie")
	}

	for _, body := range []string{`{"username":"admin"}`, `{"password":"x"}`, `not json`, ``} {
		rr := ts.do(http.MethodPost, "/api/admin/login", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rr.Code)
		}
	}
}

func TestLogin_Lockout(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 3; i++ {
		rr := ts.do(http.MethodPost, "/api/admin/login", LoginRequest{Username: testAdmin, Password: "wrong-pass"})
		assertStatus(t, rr, http.StatusUnauthorized)
	}

	rr := ts.do(http.MethodPost, "/api/admin/login", LoginRequest{Username: testAdmin, Password: testPassword})
	assertStatus(t, rr, http.StatusTooManyRequests)
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After not set")
	}
}

func TestLogin_UpgradesBcryptHash(t *testing.T) {
	ts := newTestServer(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if _, err := ts.mem.CreateAdmin(context.Background(), store.CreateAdminParams{
		Username:     "legacy",
		PasswordHash: string(legacy),
	}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	if res := login(ts, "legacy", "legacy-pass"); res.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", res.StatusCode)
	}

	admin, err := ts.mem.GetAdminByUsername(context.Background(), "legacy")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if !strings.HasPrefix(admin.PasswordHash, "$argon2id$") {
		t.Errorf("hash not upgraded: %q", admin.PasswordHash)
	}
	if res := login(ts, "legacy", "legacy-pass"); res.StatusCode != http.StatusOK {
		t.Errorf("login after upgrade status = %d", res.StatusCode)
	}
}

func TestLogin_CookieAuthenticatesWrites(t *testing.T) {
	ts := newTestServer(t)

	res := login(ts, testAdmin, testPassword)
	cookies := res.Cookies()
	if len(cookies) == 0 {
		t.Fatal("no cookie")
	}

	rr := ts.do(http.MethodPost, "/api/timeline", CreateTimelineEventRequest{
		TitleEn: "Joined", Date: "2020-01-01", Type: "work",
	}, func(r *http.Request) { r.AddCookie(cookies[0]) })
	assertStatus(t, rr, http.StatusCreated)

	rr = ts.do(http.MethodGet, "/api/admin/me", nil, func(r *http.Request) { r.AddCookie(cookies[0]) })
	me := decode[MeResponse](t, rr)
	if !me.Authenticated || me.Username != testAdmin || me.Carrier != string(auth.CarrierCookie) {
		t.Errorf("me = %+v", me)
	}
}

func TestLogoutAndMe(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/admin/me", nil)
	if decode[MeResponse](t, rr).Authenticated {
		t.Error("anonymous caller reported as authenticated")
	}

	rr = ts.do(http.MethodPost, "/api/admin/logout", nil)
	assertStatus(t, rr, http.StatusOK)
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("logout cookies = %+v", cookies)
	}
}

func TestChangePassword(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		req        ChangePasswordRequest
		wantStatus int
	}{
		{"missing old password", ChangePasswordRequest{Username: testAdmin, NewPassword: "brand-new"}, http.StatusBadRequest},
		{"missing new password", ChangePasswordRequest{Username: testAdmin, OldPassword: testPassword}, http.StatusBadRequest},
		{"new password too short", ChangePasswordRequest{Username: testAdmin, OldPassword: testPassword, NewPassword: "abc"}, http.StatusBadRequest},
		{"wrong old password", ChangePasswordRequest{Username: testAdmin, OldPassword: "not-it", NewPassword: "brand-new"}, http.StatusUnauthorized},
		{"unknown user", ChangePasswordRequest{Username: "ghost", OldPassword: testPassword, NewPassword: "brand-new"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(http.MethodPost, "/api/admin/change-password", tt.req)
			assertStatus(t, rr, tt.wantStatus)
		})
	}

	// The failures above must not have changed anything.
	if res := login(ts, testAdmin, testPassword); res.StatusCode != http.StatusOK {
		t.Fatalf("login with original password = %d", res.StatusCode)
	}

	rr := ts.do(http.MethodPost, "/api/admin/change-password", ChangePasswordRequest{
		Username: testAdmin, OldPassword: testPassword, NewPassword: "brand-new",
	})
	assertStatus(t, rr, http.StatusOK)

	if res := login(ts, testAdmin, testPassword); res.StatusCode != http.StatusUnauthorized {
		t.Errorf("old password still accepted: %d", res.StatusCode)
	}
	if res := login(ts, testAdmin, "brand-new"); res.StatusCode != http.StatusOK {
		t.Errorf("new password rejected: %d", res.StatusCode)
	}
}

func TestChangePassword_UsernameFromCookie(t *testing.T) {
	ts := newTestServer(t)

	cookie, err := auth.NewLoginCookie(auth.DefaultCookieName, testAdmin, time.Now().Add(time.Hour), false)
	if err != nil {
		t.Fatalf("NewLoginCookie: %v", err)
	}

	rr := ts.do(http.MethodPost, "/api/admin/change-password", ChangePasswordRequest{
		OldPassword: testPassword, NewPassword: "from-cookie",
	}, func(r *http.Request) { r.AddCookie(cookie) })
	assertStatus(t, rr, http.StatusOK)

	if res := login(ts, testAdmin, "from-cookie"); res.StatusCode != http.StatusOK {
		t.Errorf("new password rejected: %d", res.StatusCode)
	}
}
