// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWriteAPIError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAPIError(rr, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Unauthorized" || body["code"] != CodeUnauthorized {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["details"]; ok {
		t.Error("details should be omitted when empty")
	}
}

func TestWriteAPIErrorDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAPIErrorDetails(rr, http.StatusInternalServerError, "", "Failed to fetch articles", "connection refused")

	var body APIError
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Details != "connection refused" || body.Code != "" {
		t.Errorf("body = %+v", body)
	}
}

func TestGlobalRateLimiter(t *testing.T) {
	handler := NewGlobalRateLimiter(0.001, 3).Middleware()(okHandler())

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 3; i++ {
		if code := request("198.51.100.1"); code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, code)
		}
	}
	if code := request("198.51.100.1"); code != http.StatusTooManyRequests {
		t.Errorf("request over burst = %d, want 429", code)
	}
	if code := request("198.51.100.2"); code != http.StatusOK {
		t.Errorf("other IP = %d, want 200", code)
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	lc.get("a")
	lc.get("b")

	if lc.clearIfExceeds(2) {
		t.Error("cleared at the limit")
	}
	lc.get("c")
	if !lc.clearIfExceeds(2) {
		t.Error("not cleared above the limit")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("len = %d after clear", len(lc.limiters))
	}
}
