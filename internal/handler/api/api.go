// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON handlers of the folio HTTP API.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio/internal/auth"
	"github.com/olegiv/folio/internal/cache"
	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/store"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Config holds the settings the handlers read at request time.
type Config struct {
	CookieName         string
	SessionTTL         time.Duration
	SecureCookies      bool
	ExposeErrorDetails bool
	Version            string
}

// Deps are the collaborators shared by all API handlers.
type Deps struct {
	Store           store.Store
	LoginProtection *middleware.LoginProtection
	// Cache is optional; when set its statistics appear in /api/status.
	Cache cache.Cache
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store           store.Store
	auth            *auth.Authenticator
	kv              *kv.Service
	loginProtection *middleware.LoginProtection
	cache           cache.Cache
	cfg             Config
	now             func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps, cfg Config) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = auth.DefaultCookieName
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Handler{
		store:           deps.Store,
		auth:            auth.NewAuthenticator(deps.Store, cfg.CookieName),
		kv:              kv.NewService(deps.Store),
		loginProtection: deps.LoginProtection,
		cache:           deps.Cache,
		cfg:             cfg,
		now:             time.Now,
	}
}

// Authenticator returns the authenticator guarding admin routes.
func (h *Handler) Authenticator() *auth.Authenticator {
	return h.auth
}

// Response wraps a single resource.
type Response struct {
	Data any `json:"data"`
}

// MessageResponse acknowledges an operation without returning a resource.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response wrapping data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteCreated writes a 201 Created response wrapping data.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteMessage writes a 200 {success, message} response.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: message})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusBadRequest, "", message)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusNotFound, "", message)
}

// WriteUnauthorized writes a 401 response with the UNAUTHORIZED code.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, message)
}

// writeInternalError logs err and writes a 500 response. The error text is
// returned as details unless ExposeErrorDetails is off.
func (h *Handler) writeInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	slog.ErrorContext(r.Context(), message, "error", err, "path", r.URL.Path)
	details := ""
	if h.cfg.ExposeErrorDetails && err != nil {
		details = err.Error()
	}
	middleware.WriteAPIErrorDetails(w, http.StatusInternalServerError, "", message, details)
}

// decodeJSON decodes the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "", "Request body too large")
		case errors.Is(err, io.EOF):
			WriteBadRequest(w, "Request body is required")
		default:
			WriteBadRequest(w, "Invalid JSON body")
		}
		return false
	}
	return true
}

// parseIDParam parses the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// EntityFetcher fetches an entity by ID.
type EntityFetcher[T any] func(id int64) (T, error)

// requireEntityByID parses the {id} URL parameter and fetches the entity.
// It writes the error response and returns false when that fails.
func requireEntityByID[T any](h *Handler, w http.ResponseWriter, r *http.Request, entityName string, fetch EntityFetcher[T]) (T, bool) {
	var zero T

	id, err := parseIDParam(r)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid "+entityName+" ID")
		return zero, false
	}

	return requireEntity(h, w, r, entityName, func() (T, error) { return fetch(id) })
}

// requireEntity fetches an entity, translating sql.ErrNoRows into a 404.
func requireEntity[T any](h *Handler, w http.ResponseWriter, r *http.Request, entityName string, fetch func() (T, error)) (T, bool) {
	entity, err := fetch()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, capitalizeFirst(entityName)+" not found")
		} else {
			h.writeInternalError(w, r, "Failed to fetch "+entityName, err)
		}
		return entity, false
	}
	return entity, true
}

// SlugExistsChecker reports whether a slug is taken by another row.
type SlugExistsChecker func() (bool, error)

// checkSlugUnique writes a 400 and returns false if the slug is taken.
func (h *Handler) checkSlugUnique(w http.ResponseWriter, r *http.Request, slugExists SlugExistsChecker) bool {
	exists, err := slugExists()
	if err != nil {
		h.writeInternalError(w, r, "Failed to check slug", err)
		return false
	}
	if exists {
		WriteBadRequest(w, "Slug already exists")
		return false
	}
	return true
}

// writeWriteError answers a failed create, update or delete.
func (h *Handler) writeWriteError(w http.ResponseWriter, r *http.Request, entityName, action string, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		WriteBadRequest(w, "Slug already exists")
	case errors.Is(err, sql.ErrNoRows):
		WriteNotFound(w, capitalizeFirst(entityName)+" not found")
	default:
		h.writeInternalError(w, r, "Failed to "+action+" "+entityName, err)
	}
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string       `json:"status"`
	Version string       `json:"version"`
	Cache   *cache.Stats `json:"cache,omitempty"`
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{Status: "ok", Version: h.cfg.Version}
	if sp, ok := h.cache.(cache.StatsProvider); ok {
		stats := sp.Stats()
		resp.Cache = &stats
	}
	WriteJSON(w, http.StatusOK, resp)
}
