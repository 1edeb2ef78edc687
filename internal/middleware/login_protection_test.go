// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// testLoginProtection returns a LoginProtection with a controllable clock.
func testLoginProtection(t *testing.T, maxAttempts int, lockoutDuration, attemptWindow time.Duration) (*LoginProtection, *time.Time) {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockoutDuration,
		AttemptWindow:     attemptWindow,
	})
	t.Cleanup(lp.Stop)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }
	return lp, &now
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 {
		t.Errorf("IPRateLimit = %v, want 0.5", cfg.IPRateLimit)
	}
	if cfg.IPBurst != 5 {
		t.Errorf("IPBurst = %d, want 5", cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want 15m", cfg.LockoutDuration)
	}
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Stop()

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5 (default)", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m (default)", lp.lockoutDuration)
	}
}

func TestLoginProtectionLockout(t *testing.T) {
	lp, now := testLoginProtection(t, 3, time.Minute, 10*time.Minute)
	user := "admin"

	if locked, _ := lp.IsAccountLocked(user); locked {
		t.Fatal("account should not be locked initially")
	}

	for i := 1; i <= 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(user); locked {
			t.Fatalf("attempt %d should not lock", i)
		}
	}
	locked, d := lp.RecordFailedAttempt(user)
	if !locked || d != time.Minute {
		t.Fatalf("third attempt = (%v, %v), want (true, 1m)", locked, d)
	}

	locked, remaining := lp.IsAccountLocked(user)
	if !locked || remaining != time.Minute {
		t.Errorf("IsAccountLocked = (%v, %v), want (true, 1m)", locked, remaining)
	}

	*now = now.Add(time.Minute + time.Second)
	if locked, _ := lp.IsAccountLocked(user); locked {
		t.Error("account should be unlocked after lockout expires")
	}
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	lp, now := testLoginProtection(t, 2, time.Minute, time.Hour)
	user := "admin"

	lp.RecordFailedAttempt(user)
	_, first := lp.RecordFailedAttempt(user)
	*now = now.Add(first + time.Second)

	lp.RecordFailedAttempt(user)
	_, second := lp.RecordFailedAttempt(user)

	if second != 2*first {
		t.Errorf("second lockout = %v, want %v", second, 2*first)
	}
}

func TestLoginProtectionBackoffCapped(t *testing.T) {
	lp, _ := testLoginProtection(t, 1, 20*time.Hour, time.Hour)
	lp.failedAttempts["admin"] = &loginAttempt{count: 0, firstFailed: lp.now(), lockouts: 3}

	_, d := lp.RecordFailedAttempt("admin")
	if d != maxLockout {
		t.Errorf("lockout = %v, want %v", d, maxLockout)
	}
}

func TestLoginProtectionSuccessfulLoginResets(t *testing.T) {
	lp, _ := testLoginProtection(t, 5, time.Minute, time.Minute)
	user := "admin"

	lp.RecordFailedAttempt(user)
	lp.RecordFailedAttempt(user)
	if got := lp.GetRemainingAttempts(user); got != 3 {
		t.Errorf("GetRemainingAttempts() = %d, want 3", got)
	}

	lp.RecordSuccessfulLogin(user)
	if got := lp.GetRemainingAttempts(user); got != 5 {
		t.Errorf("GetRemainingAttempts() after success = %d, want 5", got)
	}
}

func TestLoginProtectionAttemptWindowReset(t *testing.T) {
	lp, now := testLoginProtection(t, 5, time.Minute, time.Minute)
	user := "admin"

	lp.RecordFailedAttempt(user)
	if got := lp.GetRemainingAttempts(user); got != 4 {
		t.Errorf("GetRemainingAttempts() = %d, want 4", got)
	}

	*now = now.Add(2 * time.Minute)
	if got := lp.GetRemainingAttempts(user); got != 5 {
		t.Errorf("GetRemainingAttempts() after window = %d, want 5", got)
	}

	lp.RecordFailedAttempt(user)
	if got := lp.GetRemainingAttempts(user); got != 4 {
		t.Errorf("GetRemainingAttempts() after reset = %d, want 4", got)
	}
}

func TestLoginProtectionCleanup(t *testing.T) {
	lp, now := testLoginProtection(t, 5, time.Minute, time.Minute)
	lp.RecordFailedAttempt("old")
	*now = now.Add(5 * time.Minute)
	lp.RecordFailedAttempt("fresh")

	lp.cleanupStaleEntries()

	if _, ok := lp.failedAttempts["old"]; ok {
		t.Error("stale entry was not removed")
	}
	if _, ok := lp.failedAttempts["fresh"]; !ok {
		t.Error("fresh entry was removed")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xForwarded string
		xRealIP    string
		want       string
	}{
		{"simple remote addr", "192.168.1.1:12345", "", "", "192.168.1.1"},
		{"remote addr without port", "192.168.1.1", "", "", "192.168.1.1"},
		{"X-Forwarded-For single", "127.0.0.1:8080", "10.0.0.1", "", "10.0.0.1"},
		{"X-Forwarded-For multiple", "127.0.0.1:8080", "10.0.0.1, 10.0.0.2, 10.0.0.3", "", "10.0.0.1"},
		{"X-Real-IP", "127.0.0.1:8080", "", "10.0.0.5", "10.0.0.5"},
		{"X-Forwarded-For takes precedence over X-Real-IP", "127.0.0.1:8080", "10.0.0.1", "10.0.0.5", "10.0.0.1"},
		{"X-Forwarded-For with spaces", "127.0.0.1:8080", "  10.0.0.1  ", "", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	defer lp.Stop()

	wrapped := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/admin/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := do(http.MethodPost); rr.Code != http.StatusOK {
			t.Fatalf("POST %d status = %d, want 200", i+1, rr.Code)
		}
	}

	rr := do(http.MethodPost)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("POST over burst status = %d, want 429", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), CodeRateLimited) {
		t.Errorf("body = %s, want code %s", rr.Body.String(), CodeRateLimited)
	}

	if rr := do(http.MethodGet); rr.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200 (not limited)", rr.Code)
	}
}
