// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxIdentityBodySize bounds how much of a request body is buffered while
// looking for a username field.
const maxIdentityBodySize = 1 << 20

// AdminLookup reports whether an admin account exists.
type AdminLookup interface {
	AdminExists(ctx context.Context, username string) (bool, error)
}

// Carrier names the part of the request that authenticated the caller.
type Carrier string

// Credential carriers, in evaluation order.
const (
	CarrierNone   Carrier = ""
	CarrierBearer Carrier = "bearer"
	CarrierCookie Carrier = "cookie"
	CarrierBody   Carrier = "body"
)

// Identity is the outcome of an authentication check.
type Identity struct {
	Authenticated bool
	Username      string
	Carrier       Carrier
}

// Authenticator decides whether a request comes from an admin.
//
// The first carrier present decides the outcome:
//  1. Authorization: Bearer <token>, where the token is an admin username.
//  2. The admin cookie, valid while isLoggedIn is true and expiresAt is ahead.
//  3. A "username" field in a JSON request body naming an admin.
//
// Any lookup or parse failure yields an unauthenticated identity.
type Authenticator struct {
	admins     AdminLookup
	cookieName string
	now        func() time.Time
}

// NewAuthenticator creates an Authenticator reading the named cookie.
func NewAuthenticator(admins AdminLookup, cookieName string) *Authenticator {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Authenticator{
		admins:     admins,
		cookieName: cookieName,
		now:        time.Now,
	}
}

// CookieName returns the admin cookie name.
func (a *Authenticator) CookieName() string {
	return a.cookieName
}

// IsAuthenticated reports whether r carries admin credentials.
func (a *Authenticator) IsAuthenticated(r *http.Request) bool {
	return a.Identify(r).Authenticated
}

// Identify evaluates the credential carriers of r. When the body is
// inspected it is restored so downstream handlers can read it again.
func (a *Authenticator) Identify(r *http.Request) Identity {
	if token, ok := bearerToken(r); ok {
		return a.checkUsername(r.Context(), token, CarrierBearer)
	}

	if c, err := r.Cookie(a.cookieName); err == nil {
		state, err := DecodeCookieValue(c.Value)
		if err != nil {
			slog.Debug("admin cookie rejected", "error", err)
			return Identity{}
		}
		if !state.Valid(a.now()) {
			return Identity{}
		}
		return Identity{Authenticated: true, Username: state.Username, Carrier: CarrierCookie}
	}

	username, ok := bodyUsername(r)
	if !ok {
		return Identity{}
	}
	return a.checkUsername(r.Context(), username, CarrierBody)
}

func (a *Authenticator) checkUsername(ctx context.Context, username string, carrier Carrier) Identity {
	if a.admins == nil || username == "" {
		return Identity{}
	}
	exists, err := a.admins.AdminExists(ctx, username)
	if err != nil {
		slog.Warn("admin lookup failed during authentication", "error", err, "carrier", string(carrier))
		return Identity{}
	}
	if !exists {
		return Identity{}
	}
	return Identity{Authenticated: true, Username: username, Carrier: carrier}
}

// bearerToken extracts a non-empty bearer token.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}

// bodyUsername reads the username field from a JSON body and puts the
// consumed bytes back in front of the remaining body.
func bodyUsername(r *http.Request) (string, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", false
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "json") {
		return "", false
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxIdentityBodySize))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}
	if err != nil || len(buf) == 0 {
		return "", false
	}

	var payload struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(buf, &payload); err != nil {
		return "", false
	}
	username := strings.TrimSpace(payload.Username)
	return username, username != ""
}
