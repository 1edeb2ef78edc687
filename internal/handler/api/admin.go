// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/olegiv/folio/internal/auth"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/store"
)

const (
	msgLoginFailed       = "Username or password incorrect"
	msgOldPasswordFailed = "Old password is incorrect"
	msgLocked            = "Too many failed attempts. Please try again later."
)

// dummyHash is compared against when the username does not exist, so both
// failure paths cost one hash verification.
var (
	dummyHashOnce sync.Once
	dummyHash     string
)

func getDummyHash() string {
	dummyHashOnce.Do(func() {
		h, err := auth.HashPassword("folio-dummy-password")
		if err != nil {
			slog.Error("failed to create dummy password hash", "error", err)
			return
		}
		dummyHash = h
	})
	return dummyHash
}

// LoginRequest is the body of POST /api/admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Success   bool            `json:"success"`
	Username  string          `json:"username"`
	ExpiresAt auth.CookieTime `json:"expiresAt"`
}

// ChangePasswordRequest is the body of POST /api/admin/change-password.
type ChangePasswordRequest struct {
	Username    string `json:"username"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// MeResponse reports who the caller is.
type MeResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Carrier       string `json:"carrier,omitempty"`
}

// Login handles POST /api/admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		WriteBadRequest(w, "Username and password are required")
		return
	}

	if h.rejectLocked(w, username) {
		return
	}

	admin, ok := h.verifyCredentials(w, r, username, req.Password, msgLoginFailed)
	if !ok {
		return
	}

	h.loginProtection.RecordSuccessfulLogin(username)
	h.upgradeHash(r, admin, req.Password)
	if err := h.store.TouchAdminLogin(r.Context(), admin.ID); err != nil {
		slog.WarnContext(r.Context(), "failed to record admin login time", "category", model.EventCategoryAuth, "error", err)
	}

	expiresAt := h.now().Add(h.cfg.SessionTTL)
	cookie, err := auth.NewLoginCookie(h.cfg.CookieName, admin.Username, expiresAt, h.cfg.SecureCookies)
	if err != nil {
		h.writeInternalError(w, r, "Failed to create session", err)
		return
	}
	http.SetCookie(w, cookie)

	slog.InfoContext(r.Context(), "admin logged in",
		"category", model.EventCategoryAuth,
		"username", admin.Username,
		"ip", middleware.GetClientIP(r),
	)

	WriteJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Username:  admin.Username,
		ExpiresAt: auth.CookieTime{Time: expiresAt},
	})
}

// Logout handles POST /api/admin/logout.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, auth.NewLogoutCookie(h.cfg.CookieName, h.cfg.SecureCookies))
	WriteMessage(w, "Logged out")
}

// Me handles GET /api/admin/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := h.auth.Identify(r)
	WriteJSON(w, http.StatusOK, MeResponse{
		Authenticated: id.Authenticated,
		Username:      id.Username,
		Carrier:       string(id.Carrier),
	})
}

// ChangePassword handles POST /api/admin/change-password. When the body has
// no username, the one carried by the admin cookie is used.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		if id := h.auth.Identify(r); id.Authenticated {
			username = id.Username
		}
	}
	if username == "" || req.OldPassword == "" || req.NewPassword == "" {
		WriteBadRequest(w, "Username, old password and new password are required")
		return
	}
	if !auth.ValidNewPassword(req.NewPassword) {
		WriteBadRequest(w, "New password must be at least "+strconv.Itoa(auth.MinPasswordLength)+" characters")
		return
	}

	if h.rejectLocked(w, username) {
		return
	}

	admin, ok := h.verifyCredentials(w, r, username, req.OldPassword, msgOldPasswordFailed)
	if !ok {
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.writeInternalError(w, r, "Failed to hash password", err)
		return
	}
	if err := h.store.UpdateAdminPassword(r.Context(), store.UpdateAdminPasswordParams{
		ID:           admin.ID,
		PasswordHash: hash,
	}); err != nil {
		h.writeInternalError(w, r, "Failed to update password", err)
		return
	}

	h.loginProtection.RecordSuccessfulLogin(username)
	slog.InfoContext(r.Context(), "admin password changed",
		"category", model.EventCategoryAuth,
		"username", admin.Username,
	)
	WriteMessage(w, "Password changed")
}

// rejectLocked writes a 429 if username is locked out.
func (h *Handler) rejectLocked(w http.ResponseWriter, username string) bool {
	locked, remaining := h.loginProtection.IsAccountLocked(username)
	if !locked {
		return false
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(remaining.Seconds()))))
	middleware.WriteAPIError(w, http.StatusTooManyRequests, middleware.CodeRateLimited, msgLocked)
	return true
}

// verifyCredentials loads the admin and checks password. Unknown users and
// wrong passwords produce the same 401 and both count as failed attempts.
func (h *Handler) verifyCredentials(w http.ResponseWriter, r *http.Request, username, password, failMsg string) (store.Admin, bool) {
	admin, err := h.store.GetAdminByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		h.writeInternalError(w, r, "Failed to verify credentials", err)
		return store.Admin{}, false
	}

	hash := admin.PasswordHash
	if err != nil {
		hash = getDummyHash()
	}

	match, verr := auth.CheckPassword(password, hash)
	if verr != nil {
		slog.WarnContext(r.Context(), "password verification failed",
			"category", model.EventCategoryAuth,
			"username", username,
			"error", verr,
		)
	}
	if err != nil || verr != nil || !match {
		h.recordFailure(r, username)
		WriteUnauthorized(w, failMsg)
		return store.Admin{}, false
	}
	return admin, true
}

func (h *Handler) recordFailure(r *http.Request, username string) {
	h.loginProtection.RecordFailedAttempt(username)
	slog.InfoContext(r.Context(), "admin authentication failed",
		"category", model.EventCategoryAuth,
		"username", username,
		"ip", middleware.GetClientIP(r),
		"remaining_attempts", h.loginProtection.GetRemainingAttempts(username),
	)
}

// upgradeHash rewrites legacy or outdated hashes after a successful login.
func (h *Handler) upgradeHash(r *http.Request, admin store.Admin, password string) {
	if !auth.NeedsRehash(admin.PasswordHash) {
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.WarnContext(r.Context(), "failed to rehash password", "category", model.EventCategoryAuth, "error", err)
		return
	}
	if err := h.store.UpdateAdminPassword(r.Context(), store.UpdateAdminPasswordParams{
		ID:           admin.ID,
		PasswordHash: hash,
	}); err != nil {
		slog.WarnContext(r.Context(), "failed to store upgraded password hash", "category", model.EventCategoryAuth, "error", err)
		return
	}
	slog.InfoContext(r.Context(), "admin password hash upgraded", "category", model.EventCategoryAuth, "username", admin.Username)
}
