// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/folio/internal/cache"
	"github.com/olegiv/folio/internal/handler"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/testutil"
)

const (
	testAdmin    = "admin"
	testPassword = "secret1"
	browserUA    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type testServer struct {
	t      *testing.T
	mem    *testutil.MemStore
	lp     *middleware.LoginProtection
	router http.Handler
}

type serverOption func(*Deps, *RouterConfig)

// withResponseCache serves anonymous GETs from c and reports its stats on
// /api/status.
func withResponseCache(c cache.Cache) serverOption {
	return func(deps *Deps, cfg *RouterConfig) {
		deps.Cache = c
		cfg.ResponseCache = c
		cfg.CacheTTL = time.Minute
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	mem := testutil.NewMemStore()
	testutil.SeedAdmin(t, mem, testAdmin, testPassword)

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	t.Cleanup(lp.Stop)

	deps := Deps{Store: mem, LoginProtection: lp}
	cfg := RouterConfig{
		Logger:        slog.New(slog.DiscardHandler),
		IsDevelopment: true,
		CSRFKey:       bytes.Repeat([]byte("k"), 32),
		PublicMaxAge:  60,
		PublicSWR:     300,
	}
	for _, o := range opts {
		o(&deps, &cfg)
	}

	h := NewHandler(deps, Config{
		Version:            "v0.0.0-test",
		ExposeErrorDetails: true,
	})
	health := handler.NewHealthHandler(mem, h.Authenticator(), "v0.0.0-test")

	return &testServer{t: t, mem: mem, lp: lp, router: NewRouter(h, health, cfg)}
}

// asAdmin authenticates the request with the bearer carrier.
func asAdmin(r *http.Request) {
	r.Header.Set("Authorization", "Bearer "+testAdmin)
}

func withUA(ua string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("User-Agent", ua) }
}

// do sends a request. body may be nil, a string of raw JSON, or a value to
// encode.
func (ts *testServer) do(method, target string, body any, prepare ...func(*http.Request)) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			ts.t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "203.0.113.10:4321"
	for _, p := range prepare {
		p(req)
	}

	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals the response body into T.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
	return v
}

// dataOf decodes a {"data": T} response.
func dataOf[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	return decode[struct {
		Data T `json:"data"`
	}](t, rr).Data
}

// listOf decodes a list response.
func listOf[T any](t *testing.T, rr *httptest.ResponseRecorder) ([]T, Pagination) {
	t.Helper()
	resp := decode[struct {
		Data       []T        `json:"data"`
		Pagination Pagination `json:"pagination"`
	}](t, rr)
	return resp.Data, resp.Pagination
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) middleware.APIError {
	t.Helper()
	return decode[middleware.APIError](t, rr)
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}
