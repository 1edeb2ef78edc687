// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/folio/internal/auth"
	"github.com/olegiv/folio/internal/cache"
)

// PublicCache sets shared-cache headers on successful GET responses of
// public endpoints.
func PublicCache(maxAge, staleWhileRevalidate int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d", maxAge, staleWhileRevalidate)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cachedResponse is the stored form of a cached GET response.
type cachedResponse struct {
	ContentType  string `json:"content_type"`
	CacheControl string `json:"cache_control,omitempty"`
	Body         []byte `json:"body"`
}

// Identifier reports who issued a request.
type Identifier interface {
	Identify(r *http.Request) auth.Identity
}

// ContextKeyAdminWrite is the context key of the flag RequireAdmin raises
// for requests it lets through.
const ContextKeyAdminWrite ContextKey = "admin_write"

// markAdmin raises the admin flag installed by ResponseCache, if any.
func markAdmin(r *http.Request) {
	if flag, ok := r.Context().Value(ContextKeyAdminWrite).(*bool); ok {
		*flag = true
	}
}

// ResponseCache serves repeated anonymous GETs from c. Only responses whose
// Cache-Control is public are stored. Requests carrying admin credentials
// bypass the cache, and a successful non-GET request that passed
// RequireAdmin clears it.
type ResponseCache struct {
	cache      cache.Cache
	ttl        time.Duration
	ids        Identifier
	cookieName string
}

// NewResponseCache creates a ResponseCache.
func NewResponseCache(c cache.Cache, ttl time.Duration, ids Identifier, cookieName string) *ResponseCache {
	return &ResponseCache{cache: c, ttl: ttl, ids: ids, cookieName: cookieName}
}

// Invalidate removes every cached response.
func (rc *ResponseCache) Invalidate(r *http.Request) {
	if err := rc.cache.Clear(r.Context()); err != nil {
		slog.Warn("response cache clear failed", "category", "cache", "error", err)
	}
}

// Middleware returns the caching middleware.
func (rc *ResponseCache) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				admin := new(bool)
				r = r.WithContext(context.WithValue(r.Context(), ContextKeyAdminWrite, admin))
				rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
				next.ServeHTTP(rec, r)
				if *admin && rec.status < http.StatusBadRequest {
					rc.Invalidate(r)
				}
				return
			}

			if rc.bypass(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := "resp:" + r.URL.RequestURI()
			if data, err := rc.cache.Get(r.Context(), key); err == nil {
				var cr cachedResponse
				if err := json.Unmarshal(data, &cr); err == nil {
					writeCached(w, cr)
					return
				}
			} else if !errors.Is(err, cache.ErrCacheMiss) {
				slog.Debug("response cache read failed", "error", err)
			}

			rec := &bodyRecorder{statusRecorder: statusRecorder{ResponseWriter: w, status: http.StatusOK}}
			w.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			cacheControl := w.Header().Get("Cache-Control")
			if rec.status != http.StatusOK || !isPublic(cacheControl) {
				return
			}
			data, err := json.Marshal(cachedResponse{
				ContentType:  w.Header().Get("Content-Type"),
				CacheControl: cacheControl,
				Body:         rec.buf.Bytes(),
			})
			if err != nil {
				return
			}
			if err := rc.cache.Set(r.Context(), key, data, rc.ttl); err != nil {
				slog.Debug("response cache write failed", "error", err)
			}
		})
	}
}

func (rc *ResponseCache) bypass(r *http.Request) bool {
	if r.Header.Get("Authorization") != "" {
		return true
	}
	if _, err := r.Cookie(rc.cookieName); err == nil {
		return true
	}
	return rc.ids != nil && rc.ids.Identify(r).Authenticated
}

// isPublic reports whether a response may be shared between callers.
func isPublic(cacheControl string) bool {
	cc := strings.ToLower(cacheControl)
	return strings.Contains(cc, "public") &&
		!strings.Contains(cc, "private") &&
		!strings.Contains(cc, "no-store")
}

func writeCached(w http.ResponseWriter, cr cachedResponse) {
	if cr.ContentType != "" {
		w.Header().Set("Content-Type", cr.ContentType)
	}
	if cr.CacheControl != "" {
		w.Header().Set("Cache-Control", cr.CacheControl)
	}
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(cr.Body)
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.status = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.wroteHeader = true
	return sr.ResponseWriter.Write(b)
}

// bodyRecorder also keeps a copy of the response body.
type bodyRecorder struct {
	statusRecorder
	buf bytes.Buffer
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	br.buf.Write(b)
	return br.statusRecorder.Write(b)
}
