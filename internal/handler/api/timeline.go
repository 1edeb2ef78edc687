// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/store"
	"github.com/olegiv/folio/internal/util"
)

// CreateTimelineEventRequest is the body of POST /api/timeline.
type CreateTimelineEventRequest struct {
	TitleZh       string `json:"title_zh"`
	TitleEn       string `json:"title_en"`
	DescriptionZh string `json:"description_zh"`
	DescriptionEn string `json:"description_en"`
	Date          string `json:"date"`
	Type          string `json:"type"`
	SortOrder     int32  `json:"sort_order"`
}

// UpdateTimelineEventRequest is the body of PUT /api/timeline/{id}.
type UpdateTimelineEventRequest struct {
	TitleZh       *string `json:"title_zh"`
	TitleEn       *string `json:"title_en"`
	DescriptionZh *string `json:"description_zh"`
	DescriptionEn *string `json:"description_en"`
	Date          *string `json:"date"`
	Type          *string `json:"type"`
	SortOrder     *int32  `json:"sort_order"`
}

const (
	msgInvalidTimelineType = "Invalid type. Must be one of: "
	msgInvalidTimelineDate = "Invalid date. Use YYYY-MM-DD or YYYY-MM"
)

// ListTimelineEvents handles GET /api/timeline.
// Query params: page, limit, type.
func (h *Handler) ListTimelineEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var eventType string
	if t := r.URL.Query().Get("type"); t != "" {
		parsed, ok := model.ParseTimelineType(t)
		if !ok {
			WriteBadRequest(w, msgInvalidTimelineType+model.TimelineTypeList())
			return
		}
		eventType = string(parsed)
	}

	pr := parsePageRequest(r)
	events, total, err := ListAndCount(
		func() ([]store.TimelineEvent, error) {
			return h.store.ListTimelineEvents(ctx, store.ListTimelineEventsParams{
				Type:   eventType,
				Limit:  pr.Limit32(),
				Offset: pr.Offset(),
			})
		},
		func() (int64, error) { return h.store.CountTimelineEvents(ctx, eventType) },
	)
	if err != nil {
		h.writeInternalError(w, r, "Failed to fetch timeline events", err)
		return
	}

	writeList(w, events, pr, total)
}

// GetTimelineEvent handles GET /api/timeline/{id}.
func (h *Handler) GetTimelineEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.requireTimelineEvent(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, event)
}

// CreateTimelineEvent handles POST /api/timeline.
func (h *Handler) CreateTimelineEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTimelineEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.TitleZh = strings.TrimSpace(req.TitleZh)
	req.TitleEn = strings.TrimSpace(req.TitleEn)
	if msg := validateTitles(req.TitleZh, req.TitleEn); msg != "" {
		WriteBadRequest(w, msg)
		return
	}

	if strings.TrimSpace(req.Date) == "" || req.Type == "" {
		WriteBadRequest(w, "Date and type are required")
		return
	}
	date, ok := model.ParseTimelineDate(strings.TrimSpace(req.Date))
	if !ok {
		WriteBadRequest(w, msgInvalidTimelineDate)
		return
	}
	eventType, ok := model.ParseTimelineType(req.Type)
	if !ok {
		WriteBadRequest(w, msgInvalidTimelineType+model.TimelineTypeList())
		return
	}

	event, err := h.store.CreateTimelineEvent(ctx, store.CreateTimelineEventParams{
		TitleZh:       req.TitleZh,
		TitleEn:       req.TitleEn,
		DescriptionZh: req.DescriptionZh,
		DescriptionEn: req.DescriptionEn,
		Date:          date.Format(model.DateLayout),
		Type:          string(eventType),
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		h.writeWriteError(w, r, "timeline event", "create", err)
		return
	}

	slog.InfoContext(ctx, "timeline event created",
		"category", model.EventCategoryContent,
		"timeline_id", event.ID,
		"type", event.Type,
	)

	WriteCreated(w, event)
}

// UpdateTimelineEvent handles PUT /api/timeline/{id}. The request is fully
// validated before anything is written.
func (h *Handler) UpdateTimelineEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireTimelineEvent(w, r)
	if !ok {
		return
	}

	var req UpdateTimelineEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.TitleZh, req.TitleEn = trimPtr(req.TitleZh), trimPtr(req.TitleEn)
	if msg := validateTitles(stringOr(req.TitleZh, existing.TitleZh), stringOr(req.TitleEn, existing.TitleEn)); msg != "" {
		WriteBadRequest(w, msg)
		return
	}

	params := store.UpdateTimelineEventParams{
		ID:            existing.ID,
		TitleZh:       util.NullStringFromPtr(req.TitleZh),
		TitleEn:       util.NullStringFromPtr(req.TitleEn),
		DescriptionZh: util.NullStringFromPtr(req.DescriptionZh),
		DescriptionEn: util.NullStringFromPtr(req.DescriptionEn),
		SortOrder:     util.NullInt32FromPtr(req.SortOrder),
	}

	if req.Type != nil {
		eventType, ok := model.ParseTimelineType(*req.Type)
		if !ok {
			WriteBadRequest(w, msgInvalidTimelineType+model.TimelineTypeList())
			return
		}
		params.Type = sql.NullString{String: string(eventType), Valid: true}
	}

	if req.Date != nil {
		date, ok := model.ParseTimelineDate(strings.TrimSpace(*req.Date))
		if !ok {
			WriteBadRequest(w, msgInvalidTimelineDate)
			return
		}
		params.Date = sql.NullString{String: date.Format(model.DateLayout), Valid: true}
	}

	event, err := h.store.UpdateTimelineEvent(ctx, params)
	if err != nil {
		h.writeWriteError(w, r, "timeline event", "update", err)
		return
	}

	slog.InfoContext(ctx, "timeline event updated",
		"category", model.EventCategoryContent,
		"timeline_id", event.ID,
	)

	WriteSuccess(w, event)
}

// DeleteTimelineEvent handles DELETE /api/timeline/{id}.
func (h *Handler) DeleteTimelineEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	event, ok := h.requireTimelineEvent(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteTimelineEvent(ctx, event.ID); err != nil {
		h.writeWriteError(w, r, "timeline event", "delete", err)
		return
	}

	slog.InfoContext(ctx, "timeline event deleted",
		"category", model.EventCategoryContent,
		"timeline_id", event.ID,
	)

	WriteMessage(w, "Timeline event deleted")
}

func (h *Handler) requireTimelineEvent(w http.ResponseWriter, r *http.Request) (store.TimelineEvent, bool) {
	return requireEntityByID(h, w, r, "timeline event", func(id int64) (store.TimelineEvent, error) {
		return h.store.GetTimelineEvent(r.Context(), id)
	})
}
