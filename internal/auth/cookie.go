// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultCookieName is the admin cookie name used when none is configured.
const DefaultCookieName = "admin-auth"

// ErrMalformedCookie is returned when the admin cookie cannot be decoded.
var ErrMalformedCookie = errors.New("malformed admin cookie")

// CookieState is the JSON document stored in the admin cookie.
type CookieState struct {
	IsLoggedIn bool       `json:"isLoggedIn"`
	Username   string     `json:"username"`
	ExpiresAt  CookieTime `json:"expiresAt"`
}

// Valid reports whether the state grants access at now.
func (s CookieState) Valid(now time.Time) bool {
	return s.IsLoggedIn && !s.ExpiresAt.IsZero() && s.ExpiresAt.After(now)
}

// CookieTime is an expiry instant that decodes from either a millisecond
// epoch number or an RFC 3339 string, and always encodes as milliseconds.
type CookieTime struct {
	time.Time
}

// MarshalJSON encodes the time as a millisecond epoch.
func (t CookieTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

// UnmarshalJSON accepts a number of milliseconds, a numeric string or an
// RFC 3339 timestamp.
func (t *CookieTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		t.Time = time.Time{}
		return nil
	}

	if !strings.HasPrefix(raw, `"`) {
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("expiresAt: %w", err)
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("expiresAt: %w", err)
	}
	t.Time = parsed.UTC()
	return nil
}

// EncodeCookieValue serialises state for use as a cookie value.
// The JSON is URL-escaped since cookie values cannot carry quotes.
func EncodeCookieValue(state CookieState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(data)), nil
}

// DecodeCookieValue parses a cookie value produced by EncodeCookieValue.
// Plain, unescaped JSON is accepted as well.
func DecodeCookieValue(value string) (CookieState, error) {
	var state CookieState
	if value == "" {
		return state, ErrMalformedCookie
	}
	if !strings.HasPrefix(value, "{") {
		unescaped, err := url.QueryUnescape(value)
		if err != nil {
			return state, fmt.Errorf("%w: %v", ErrMalformedCookie, err)
		}
		value = unescaped
	}
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		return CookieState{}, fmt.Errorf("%w: %v", ErrMalformedCookie, err)
	}
	return state, nil
}

// NewLoginCookie builds the cookie set after a successful login.
func NewLoginCookie(name, username string, expiresAt time.Time, secure bool) (*http.Cookie, error) {
	value, err := EncodeCookieValue(CookieState{
		IsLoggedIn: true,
		Username:   username,
		ExpiresAt:  CookieTime{expiresAt},
	})
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// NewLogoutCookie builds a cookie that clears the admin cookie.
func NewLogoutCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
