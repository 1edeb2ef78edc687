// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio/internal/content"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/store"
	"github.com/olegiv/folio/internal/util"
)

// CreateArticleRequest is the body of POST /api/articles.
type CreateArticleRequest struct {
	Slug       string   `json:"slug"`
	TitleZh    string   `json:"title_zh"`
	TitleEn    string   `json:"title_en"`
	ContentZh  string   `json:"content_zh"`
	ContentEn  string   `json:"content_en"`
	ExcerptZh  string   `json:"excerpt_zh"`
	ExcerptEn  string   `json:"excerpt_en"`
	CoverImage string   `json:"cover_image"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status"`
	Author     string   `json:"author"`
}

// UpdateArticleRequest is the body of PUT /api/articles/{slug}.
// Omitted fields keep their stored value.
type UpdateArticleRequest struct {
	Slug       *string   `json:"slug"`
	TitleZh    *string   `json:"title_zh"`
	TitleEn    *string   `json:"title_en"`
	ContentZh  *string   `json:"content_zh"`
	ContentEn  *string   `json:"content_en"`
	ExcerptZh  *string   `json:"excerpt_zh"`
	ExcerptEn  *string   `json:"excerpt_en"`
	CoverImage *string   `json:"cover_image"`
	Category   *string   `json:"category"`
	Tags       *[]string `json:"tags"`
	Status     *string   `json:"status"`
	Author     *string   `json:"author"`
}

// ViewResponse is returned by POST /api/articles/{slug}/view.
type ViewResponse struct {
	Success   bool  `json:"success"`
	ViewCount int64 `json:"view_count"`
}

// ListArticles handles GET /api/articles.
// Query params: page, limit, status, category, tag.
// Callers that are not admins only ever see published articles.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := store.ArticleFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Tag:      strings.TrimSpace(q.Get("tag")),
	}

	if h.auth.IsAuthenticated(r) {
		w.Header().Set("Cache-Control", "private, no-store")
		if s := q.Get("status"); s != "" {
			status, ok := model.ParseArticleStatus(s)
			if !ok {
				WriteBadRequest(w, "Invalid status. Must be one of: "+model.ArticleStatusList())
				return
			}
			filter.Status = string(status)
		}
	} else {
		filter.Status = string(model.ArticleStatusPublished)
	}

	pr := parsePageRequest(r)
	articles, total, err := ListAndCount(
		func() ([]store.Article, error) {
			return h.store.ListArticles(ctx, store.ListArticlesParams{
				ArticleFilter: filter,
				Limit:         pr.Limit32(),
				Offset:        pr.Offset(),
			})
		},
		func() (int64, error) { return h.store.CountArticles(ctx, filter) },
	)
	if err != nil {
		h.writeInternalError(w, r, "Failed to fetch articles", err)
		return
	}

	writeList(w, articles, pr, total)
}

// GetArticle handles GET /api/articles/{slug}.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := h.requireArticle(w, r)
	if !ok {
		return
	}

	if !model.ArticleStatus(article.Status).IsPublished() && !h.auth.IsAuthenticated(r) {
		WriteNotFound(w, "Article not found")
		return
	}

	WriteSuccess(w, article)
}

// CreateArticle handles POST /api/articles.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.TitleZh = strings.TrimSpace(req.TitleZh)
	req.TitleEn = strings.TrimSpace(req.TitleEn)
	if msg := validateTitles(req.TitleZh, req.TitleEn); msg != "" {
		WriteBadRequest(w, msg)
		return
	}

	status := model.ArticleStatusDraft
	if req.Status != "" {
		var ok bool
		if status, ok = model.ParseArticleStatus(req.Status); !ok {
			WriteBadRequest(w, "Invalid status. Must be one of: "+model.ArticleStatusList())
			return
		}
	}

	req.Category = strings.TrimSpace(req.Category)
	if msg := validateCategory(req.Category); msg != "" {
		WriteBadRequest(w, msg)
		return
	}

	tags, ok := normalizeList(req.Tags, model.MaxTagCount)
	if !ok {
		WriteBadRequest(w, "Too many tags (max "+strconv.Itoa(model.MaxTagCount)+")")
		return
	}

	slug, ok := h.resolveSlug(w, r, req.Slug, "article", h.articleSlugExists(0), req.TitleEn, req.TitleZh)
	if !ok {
		return
	}

	if strings.TrimSpace(req.ExcerptZh) == "" {
		req.ExcerptZh = content.Excerpt(req.ContentZh, model.MaxExcerptRunes)
	}
	if strings.TrimSpace(req.ExcerptEn) == "" {
		req.ExcerptEn = content.Excerpt(req.ContentEn, model.MaxExcerptRunes)
	}

	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = model.DefaultAuthor
		if id, ok := middleware.GetIdentity(r); ok && id.Username != "" {
			author = id.Username
		}
	}

	article, err := h.store.CreateArticle(ctx, store.CreateArticleParams{
		Slug:       slug,
		TitleZh:    req.TitleZh,
		TitleEn:    req.TitleEn,
		ContentZh:  req.ContentZh,
		ContentEn:  req.ContentEn,
		ExcerptZh:  req.ExcerptZh,
		ExcerptEn:  req.ExcerptEn,
		CoverImage: strings.TrimSpace(req.CoverImage),
		Category:   req.Category,
		Tags:       tags,
		Status:     string(status),
		Author:     author,
	})
	if err != nil {
		h.writeWriteError(w, r, "article", "create", err)
		return
	}

	slog.InfoContext(ctx, "article created",
		"category", model.EventCategoryContent,
		"article_id", article.ID,
		"slug", article.Slug,
		"status", article.Status,
	)

	WriteCreated(w, article)
}

// UpdateArticle handles PUT /api/articles/{slug}.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireArticle(w, r)
	if !ok {
		return
	}

	var req UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.TitleZh, req.TitleEn = trimPtr(req.TitleZh), trimPtr(req.TitleEn)
	if msg := validateTitles(stringOr(req.TitleZh, existing.TitleZh), stringOr(req.TitleEn, existing.TitleEn)); msg != "" {
		WriteBadRequest(w, msg)
		return
	}

	params := store.UpdateArticleParams{
		ID:         existing.ID,
		TitleZh:    util.NullStringFromPtr(req.TitleZh),
		TitleEn:    util.NullStringFromPtr(req.TitleEn),
		ContentZh:  util.NullStringFromPtr(req.ContentZh),
		ContentEn:  util.NullStringFromPtr(req.ContentEn),
		ExcerptZh:  util.NullStringFromPtr(req.ExcerptZh),
		ExcerptEn:  util.NullStringFromPtr(req.ExcerptEn),
		CoverImage: util.NullStringFromPtr(req.CoverImage),
		Author:     util.NullStringFromPtr(req.Author),
	}

	if req.Status != nil {
		status, ok := model.ParseArticleStatus(*req.Status)
		if !ok {
			WriteBadRequest(w, "Invalid status. Must be one of: "+model.ArticleStatusList())
			return
		}
		params.Status = sql.NullString{String: string(status), Valid: true}
	}

	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if msg := validateCategory(category); msg != "" {
			WriteBadRequest(w, msg)
			return
		}
		params.Category = sql.NullString{String: category, Valid: true}
	}

	if req.Tags != nil {
		tags, ok := normalizeList(*req.Tags, model.MaxTagCount)
		if !ok {
			WriteBadRequest(w, "Too many tags (max "+strconv.Itoa(model.MaxTagCount)+")")
			return
		}
		params.Tags = tags
	}

	if !h.checkSlugChange(w, r, req.Slug, existing.Slug, h.articleSlugExists(existing.ID)) {
		return
	}
	params.Slug = util.NullStringFromPtr(req.Slug)

	article, err := h.store.UpdateArticle(ctx, params)
	if err != nil {
		h.writeWriteError(w, r, "article", "update", err)
		return
	}

	slog.InfoContext(ctx, "article updated",
		"category", model.EventCategoryContent,
		"article_id", article.ID,
		"slug", article.Slug,
	)

	WriteSuccess(w, article)
}

// DeleteArticle handles DELETE /api/articles/{slug}.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, ok := h.requireArticle(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteArticle(ctx, article.ID); err != nil {
		h.writeWriteError(w, r, "article", "delete", err)
		return
	}

	slog.InfoContext(ctx, "article deleted",
		"category", model.EventCategoryContent,
		"article_id", article.ID,
		"slug", article.Slug,
	)

	WriteMessage(w, "Article deleted")
}

// RecordArticleView handles POST /api/articles/{slug}/view. Drafts are
// hidden from callers that are not admins, and bots are answered with the
// current count without incrementing it.
func (h *Handler) RecordArticleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, ok := h.requireArticle(w, r)
	if !ok {
		return
	}
	if !model.ArticleStatus(article.Status).IsPublished() && !h.auth.IsAuthenticated(r) {
		WriteNotFound(w, "Article not found")
		return
	}

	if content.IsBot(r.UserAgent()) {
		WriteJSON(w, http.StatusOK, ViewResponse{Success: true, ViewCount: article.ViewCount})
		return
	}

	count, err := h.store.IncrementArticleViews(ctx, article.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Article not found")
			return
		}
		h.writeInternalError(w, r, "Failed to record view", err)
		return
	}

	WriteJSON(w, http.StatusOK, ViewResponse{Success: true, ViewCount: count})
}

// requireArticle fetches the article named by the {slug} URL parameter.
func (h *Handler) requireArticle(w http.ResponseWriter, r *http.Request) (store.Article, bool) {
	slug := chi.URLParam(r, "slug")
	return requireEntity(h, w, r, "article", func() (store.Article, error) {
		return h.store.GetArticleBySlug(r.Context(), slug)
	})
}

// articleSlugExists checks slugs against every article except excludeID.
func (h *Handler) articleSlugExists(excludeID int64) content.SlugExistsFunc {
	return func(ctx context.Context, slug string) (bool, error) {
		return h.store.ArticleSlugExists(ctx, slug, excludeID)
	}
}

func validateCategory(category string) string {
	if utf8.RuneCountInString(category) > model.MaxCategoryRunes {
		return "Category must be at most " + strconv.Itoa(model.MaxCategoryRunes) + " characters"
	}
	return ""
}
