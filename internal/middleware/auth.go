// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/folio/internal/auth"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// ContextKeyIdentity is the context key for the authenticated admin identity.
const ContextKeyIdentity ContextKey = "identity"

// RequireAdmin rejects requests that do not carry admin credentials with
// 401 {"error": "Unauthorized", "code": "UNAUTHORIZED"}.
func RequireAdmin(a *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := a.Identify(r)
			if !id.Authenticated {
				slog.Debug("admin access denied", "method", r.Method, "path", r.URL.Path)
				WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
				return
			}
			markAdmin(r)
			ctx := context.WithValue(r.Context(), ContextKeyIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the identity stored by RequireAdmin, if any.
func GetIdentity(r *http.Request) (auth.Identity, bool) {
	id, ok := r.Context().Value(ContextKeyIdentity).(auth.Identity)
	return id, ok
}
