// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestDecodeCookieValue_ExpiryFormats(t *testing.T) {
	want := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		json string
	}{
		{"milliseconds", `{"isLoggedIn":true,"username":"admin","expiresAt":1777624200000}`},
		{"millisecond string", `{"isLoggedIn":true,"username":"admin","expiresAt":"1777624200000"}`},
		{"rfc3339", `{"isLoggedIn":true,"username":"admin","expiresAt":"2026-05-01T08:30:00.000Z"}`},
		{"rfc3339 offset", `{"isLoggedIn":true,"username":"admin","expiresAt":"2026-05-01T16:30:00+08:00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, value := range []string{tt.json, url.QueryEscape(tt.json)} {
				state, err := DecodeCookieValue(value)
				if err != nil {
					t.Fatalf("DecodeCookieValue(%q) error: %v", value, err)
				}
				if !state.ExpiresAt.Equal(want) {
					t.Errorf("ExpiresAt = %v, want %v", state.ExpiresAt.Time, want)
				}
				if !state.IsLoggedIn || state.Username != "admin" {
					t.Errorf("state = %+v", state)
				}
			}
		})
	}
}

func TestDecodeCookieValue_Malformed(t *testing.T) {
	for _, value := range []string{"", "garbage", "%7B", `{"isLoggedIn":true,"expiresAt":"tomorrow"}`} {
		if _, err := DecodeCookieValue(value); !errors.Is(err, ErrMalformedCookie) {
			t.Errorf("DecodeCookieValue(%q) error = %v, want ErrMalformedCookie", value, err)
		}
	}
}

func TestEncodeCookieValue_RoundTrip(t *testing.T) {
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	value, err := EncodeCookieValue(CookieState{IsLoggedIn: true, Username: "admin", ExpiresAt: CookieTime{expires}})
	if err != nil {
		t.Fatal(err)
	}

	// The encoded value must survive a trip through net/http cookie parsing.
	rec := httptest.NewRecorder()
	http.SetCookie(rec, &http.Cookie{Name: DefaultCookieName, Value: value})
	req := &http.Request{Header: http.Header{"Cookie": {rec.Header().Get("Set-Cookie")}}}
	c, err := req.Cookie(DefaultCookieName)
	if err != nil {
		t.Fatalf("cookie not readable: %v", err)
	}

	state, err := DecodeCookieValue(c.Value)
	if err != nil {
		t.Fatal(err)
	}
	if !state.ExpiresAt.Equal(expires) || state.Username != "admin" {
		t.Errorf("decoded %+v", state)
	}
}

func TestNewLoginCookie(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	c, err := NewLoginCookie("admin-auth", "admin", expires, true)
	if err != nil {
		t.Fatal(err)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Errorf("unexpected cookie attributes: %+v", c)
	}
	state, err := DecodeCookieValue(c.Value)
	if err != nil {
		t.Fatal(err)
	}
	if !state.Valid(time.Now()) {
		t.Error("fresh login cookie should be valid")
	}

	out := NewLogoutCookie("admin-auth", false)
	if out.MaxAge >= 0 || out.Value != "" {
		t.Errorf("logout cookie should expire immediately: %+v", out)
	}
}
