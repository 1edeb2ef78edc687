// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/folio/internal/content"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/store"
	"github.com/olegiv/folio/internal/util"
)

// CreateMessageRequest is the body of the public POST /api/messages.
type CreateMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// UpdateMessageRequest is the body of PUT /api/messages/{id}.
type UpdateMessageRequest struct {
	Read    *bool `json:"read"`
	Replied *bool `json:"replied"`
}

// ListMessages handles GET /api/messages.
// Query params: page, limit, read, replied.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	read, err := util.ParseNullBool(q.Get("read"))
	if err != nil {
		WriteBadRequest(w, "Invalid read filter. Must be true or false")
		return
	}
	replied, err := util.ParseNullBool(q.Get("replied"))
	if err != nil {
		WriteBadRequest(w, "Invalid replied filter. Must be true or false")
		return
	}
	filter := store.MessageFilter{Read: read, Replied: replied}

	pr := parsePageRequest(r)
	messages, total, err := ListAndCount(
		func() ([]store.Message, error) {
			return h.store.ListMessages(ctx, store.ListMessagesParams{
				MessageFilter: filter,
				Limit:         pr.Limit32(),
				Offset:        pr.Offset(),
			})
		},
		func() (int64, error) { return h.store.CountMessages(ctx, filter) },
	)
	if err != nil {
		h.writeInternalError(w, r, "Failed to fetch messages", err)
		return
	}

	writeList(w, messages, pr, total)
}

// GetMessage handles GET /api/messages/{id}.
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.requireMessage(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, msg)
}

// CreateMessage handles the public POST /api/messages. Markup is stripped
// from every text field before validation.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := content.StripMarkup(req.Name)
	subject := content.StripMarkup(req.Subject)
	body := content.StripMarkup(req.Content)

	if name == "" || strings.TrimSpace(req.Email) == "" || body == "" {
		WriteBadRequest(w, "Name, email and content are required")
		return
	}
	email, ok := content.NormalizeEmail(req.Email)
	if !ok {
		WriteBadRequest(w, "Invalid email address")
		return
	}
	if msg := validateMessageLengths(name, email, subject, body); msg != "" {
		WriteBadRequest(w, msg)
		return
	}

	msg, err := h.store.CreateMessage(ctx, store.CreateMessageParams{
		Name:    name,
		Email:   email,
		Subject: subject,
		Content: body,
	})
	if err != nil {
		h.writeWriteError(w, r, "message", "create", err)
		return
	}

	slog.InfoContext(ctx, "message received",
		"category", model.EventCategoryMessage,
		"message_id", msg.ID,
		"ip", middleware.GetClientIP(r),
	)

	WriteCreated(w, msg)
}

// UpdateMessage handles PUT /api/messages/{id}.
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireMessage(w, r)
	if !ok {
		return
	}

	var req UpdateMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Read == nil && req.Replied == nil {
		WriteBadRequest(w, "Nothing to update: set read or replied")
		return
	}

	msg, err := h.store.UpdateMessage(ctx, store.UpdateMessageParams{
		ID:      existing.ID,
		Read:    util.NullBoolFromPtr(req.Read),
		Replied: util.NullBoolFromPtr(req.Replied),
	})
	if err != nil {
		h.writeWriteError(w, r, "message", "update", err)
		return
	}

	WriteSuccess(w, msg)
}

// DeleteMessage handles DELETE /api/messages/{id}.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	msg, ok := h.requireMessage(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteMessage(ctx, msg.ID); err != nil {
		h.writeWriteError(w, r, "message", "delete", err)
		return
	}

	slog.InfoContext(ctx, "message deleted",
		"category", model.EventCategoryMessage,
		"message_id", msg.ID,
	)

	WriteMessage(w, "Message deleted")
}

func (h *Handler) requireMessage(w http.ResponseWriter, r *http.Request) (store.Message, bool) {
	return requireEntityByID(h, w, r, "message", func(id int64) (store.Message, error) {
		return h.store.GetMessage(r.Context(), id)
	})
}

func validateMessageLengths(name, email, subject, body string) string {
	switch {
	case utf8.RuneCountInString(name) > model.MaxMessageNameRunes:
		return "Name must be at most " + strconv.Itoa(model.MaxMessageNameRunes) + " characters"
	case utf8.RuneCountInString(email) > model.MaxMessageEmailRunes:
		return "Email must be at most " + strconv.Itoa(model.MaxMessageEmailRunes) + " characters"
	case utf8.RuneCountInString(subject) > model.MaxMessageSubjectRunes:
		return "Subject must be at most " + strconv.Itoa(model.MaxMessageSubjectRunes) + " characters"
	case utf8.RuneCountInString(body) > model.MaxMessageContentRunes:
		return "Content must be at most " + strconv.Itoa(model.MaxMessageContentRunes) + " characters"
	}
	return ""
}
