// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/store"
)

// PutKVRequest is the body of PUT /api/kv/{namespace}/{key}.
type PutKVRequest struct {
	Value json.RawMessage `json:"value"`
}

// ListKV handles GET /api/kv/{namespace}.
func (h *Handler) ListKV(w http.ResponseWriter, r *http.Request) {
	entries, err := h.kv.List(r.Context(), chi.URLParam(r, "namespace"))
	if err != nil {
		h.writeKVError(w, r, "Failed to fetch entries", err)
		return
	}
	if entries == nil {
		entries = []store.KVEntry{}
	}
	WriteSuccess(w, entries)
}

// GetKV handles GET /api/kv/{namespace}/{key}.
func (h *Handler) GetKV(w http.ResponseWriter, r *http.Request) {
	entry, err := h.kv.Get(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "key"))
	if err != nil {
		h.writeKVError(w, r, "Failed to fetch entry", err)
		return
	}
	WriteSuccess(w, entry)
}

// PutKV handles PUT /api/kv/{namespace}/{key}.
func (h *Handler) PutKV(w http.ResponseWriter, r *http.Request) {
	var req PutKVRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.kv.Set(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		h.writeKVError(w, r, "Failed to save entry", err)
		return
	}

	slog.InfoContext(r.Context(), "kv entry saved",
		"category", model.EventCategoryConfig,
		"namespace", entry.Namespace,
		"key", entry.Key,
	)

	WriteSuccess(w, entry)
}

// DeleteKV handles DELETE /api/kv/{namespace}/{key}.
func (h *Handler) DeleteKV(w http.ResponseWriter, r *http.Request) {
	namespace, key := chi.URLParam(r, "namespace"), chi.URLParam(r, "key")
	if err := h.kv.Delete(r.Context(), namespace, key); err != nil {
		h.writeKVError(w, r, "Failed to delete entry", err)
		return
	}

	slog.InfoContext(r.Context(), "kv entry deleted",
		"category", model.EventCategoryConfig,
		"namespace", namespace,
		"key", key,
	)

	WriteMessage(w, "Entry deleted")
}

func (h *Handler) writeKVError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, kv.ErrNotFound):
		WriteNotFound(w, "Entry not found")
	case errors.Is(err, kv.ErrValueTooLarge):
		middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "", err.Error())
	case errors.Is(err, kv.ErrUnknownNamespace),
		errors.Is(err, kv.ErrInvalidKey),
		errors.Is(err, kv.ErrInvalidValue):
		WriteBadRequest(w, err.Error())
	default:
		h.writeInternalError(w, r, message, err)
	}
}
