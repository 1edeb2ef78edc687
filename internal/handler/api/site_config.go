// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/store"
)

// maxBatchItems bounds a batch site-config upsert.
const maxBatchItems = 200

// SiteConfigItem is one key/value pair of a site-config write. A missing
// value decodes to an empty RawMessage; an explicit null is kept.
type SiteConfigItem struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// BatchSiteConfigRequest is the object form of POST /api/site-config.
// A bare JSON array of items is accepted too.
type BatchSiteConfigRequest struct {
	Items []json.RawMessage `json:"items"`
}

// SkippedItem reports a batch item that was not applied.
type SkippedItem struct {
	Index  int    `json:"index"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// BatchSiteConfigResponse summarises a batch upsert.
type BatchSiteConfigResponse struct {
	Success bool               `json:"success"`
	Updated int                `json:"updated"`
	Data    []store.SiteConfig `json:"data"`
	Skipped []SkippedItem      `json:"skipped"`
}

// GetSiteConfig handles GET /api/site-config. With ?key= it returns that
// entry, otherwise an object of every key to its value.
func (h *Handler) GetSiteConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if key := r.URL.Query().Get("key"); key != "" {
		entry, ok := requireEntity(h, w, r, "config key", func() (store.SiteConfig, error) {
			return h.store.GetSiteConfig(ctx, key)
		})
		if !ok {
			return
		}
		WriteSuccess(w, entry)
		return
	}

	entries, err := h.store.ListSiteConfig(ctx)
	if err != nil {
		h.writeInternalError(w, r, "Failed to fetch site config", err)
		return
	}

	values := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}
	WriteSuccess(w, values)
}

// PutSiteConfig handles PUT /api/site-config with a single {key, value}.
func (h *Handler) PutSiteConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var item SiteConfigItem
	if !decodeJSON(w, r, &item) {
		return
	}
	if reason := validateSiteConfigItem(&item); reason != "" {
		WriteBadRequest(w, reason)
		return
	}

	entry, err := h.store.UpsertSiteConfig(ctx, item.Key, item.Value)
	if err != nil {
		h.writeInternalError(w, r, "Failed to save site config", err)
		return
	}

	slog.InfoContext(ctx, "site config updated",
		"category", model.EventCategoryConfig,
		"key", entry.Key,
	)

	WriteSuccess(w, entry)
}

// BatchSiteConfig handles POST /api/site-config. Malformed items are skipped
// and reported; the valid ones are upserted in one transaction, so a
// database failure leaves the stored config untouched.
func (h *Handler) BatchSiteConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var raw json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return
	}
	items, err := parseBatchItems(raw)
	if err != nil {
		WriteBadRequest(w, "Body must be an array of {key, value} or {\"items\": [...]}")
		return
	}
	if len(items) > maxBatchItems {
		WriteBadRequest(w, fmt.Sprintf("Too many items (max %d)", maxBatchItems))
		return
	}

	valid := make([]SiteConfigItem, 0, len(items))
	skipped := []SkippedItem{}
	for i, elem := range items {
		var item SiteConfigItem
		if err := json.Unmarshal(elem, &item); err != nil {
			skipped = append(skipped, SkippedItem{Index: i, Reason: "item must be an object with key and value"})
			continue
		}
		if reason := validateSiteConfigItem(&item); reason != "" {
			skipped = append(skipped, SkippedItem{Index: i, Key: item.Key, Reason: reason})
			continue
		}
		valid = append(valid, item)
	}
	if len(valid) == 0 {
		WriteJSON(w, http.StatusBadRequest, BatchSiteConfigResponse{
			Success: false,
			Data:    []store.SiteConfig{},
			Skipped: skipped,
		})
		return
	}

	saved := make([]store.SiteConfig, 0, len(valid))
	err = h.store.ExecTx(ctx, func(q store.Querier) error {
		for _, item := range valid {
			entry, err := q.UpsertSiteConfig(ctx, item.Key, item.Value)
			if err != nil {
				return fmt.Errorf("upserting %q: %w", item.Key, err)
			}
			saved = append(saved, entry)
		}
		return nil
	})
	if err != nil {
		h.writeInternalError(w, r, "Failed to save site config", err)
		return
	}

	slog.InfoContext(ctx, "site config batch updated",
		"category", model.EventCategoryConfig,
		"updated", len(saved),
		"skipped", len(skipped),
	)

	WriteJSON(w, http.StatusOK, BatchSiteConfigResponse{
		Success: true,
		Updated: len(saved),
		Data:    saved,
		Skipped: skipped,
	})
}

// DeleteSiteConfig handles DELETE /api/site-config?key=.
func (h *Handler) DeleteSiteConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := r.URL.Query().Get("key")
	if key == "" {
		WriteBadRequest(w, "Query parameter key is required")
		return
	}

	if err := h.store.DeleteSiteConfig(ctx, key); err != nil {
		h.writeWriteError(w, r, "config key", "delete", err)
		return
	}

	slog.InfoContext(ctx, "site config deleted",
		"category", model.EventCategoryConfig,
		"key", key,
	)

	WriteMessage(w, "Config key deleted")
}

// parseBatchItems accepts a JSON array of items or an object with an items
// array.
func parseBatchItems(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var req BatchSiteConfigRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	if req.Items == nil {
		return nil, errors.New("missing items")
	}
	return req.Items, nil
}

// validateSiteConfigItem trims the key and returns why the item cannot be
// stored, or "" if it can.
func validateSiteConfigItem(item *SiteConfigItem) string {
	item.Key = strings.TrimSpace(item.Key)
	switch {
	case item.Key == "":
		return "key is required"
	case !model.IsValidKey(item.Key):
		return "key must be 1-100 characters of letters, digits, '_', '.', ':' or '-'"
	case len(item.Value) == 0:
		return "value is required"
	}
	return ""
}
