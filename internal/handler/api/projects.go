// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio/internal/content"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/store"
	"github.com/olegiv/folio/internal/util"
)

// maxTechStack bounds the tech_stack list of a project.
const maxTechStack = 50

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Slug          string   `json:"slug"`
	TitleZh       string   `json:"title_zh"`
	TitleEn       string   `json:"title_en"`
	DescriptionZh string   `json:"description_zh"`
	DescriptionEn string   `json:"description_en"`
	CoverImage    string   `json:"cover_image"`
	TechStack     []string `json:"tech_stack"`
	DemoURL       string   `json:"demo_url"`
	GithubURL     string   `json:"github_url"`
	Featured      bool     `json:"featured"`
	Status        string   `json:"status"`
	SortOrder     int32    `json:"sort_order"`
}

// UpdateProjectRequest is the body of PUT /api/projects/{slug}.
type UpdateProjectRequest struct {
	Slug          *string   `json:"slug"`
	TitleZh       *string   `json:"title_zh"`
	TitleEn       *string   `json:"title_en"`
	DescriptionZh *string   `json:"description_zh"`
	DescriptionEn *string   `json:"description_en"`
	CoverImage    *string   `json:"cover_image"`
	TechStack     *[]string `json:"tech_stack"`
	DemoURL       *string   `json:"demo_url"`
	GithubURL     *string   `json:"github_url"`
	Featured      *bool     `json:"featured"`
	Status        *string   `json:"status"`
	SortOrder     *int32    `json:"sort_order"`
}

// ListProjects handles GET /api/projects.
// Query params: page, limit, featured, status.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	featured, err := util.ParseNullBool(q.Get("featured"))
	if err != nil {
		WriteBadRequest(w, "Invalid featured filter. Must be true or false")
		return
	}
	filter := store.ProjectFilter{Featured: featured}

	if s := q.Get("status"); s != "" {
		status, ok := model.ParseProjectStatus(s)
		if !ok {
			WriteBadRequest(w, "Invalid status. Must be one of: "+model.ProjectStatusList())
			return
		}
		filter.Status = string(status)
	}

	pr := parsePageRequest(r)
	projects, total, err := ListAndCount(
		func() ([]store.Project, error) {
			return h.store.ListProjects(ctx, store.ListProjectsParams{
				ProjectFilter: filter,
				Limit:         pr.Limit32(),
				Offset:        pr.Offset(),
			})
		},
		func() (int64, error) { return h.store.CountProjects(ctx, filter) },
	)
	if err != nil {
		h.writeInternalError(w, r, "Failed to fetch projects", err)
		return
	}

	writeList(w, projects, pr, total)
}

// GetProject handles GET /api/projects/{slug}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.requireProject(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, project)
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.TitleZh = strings.TrimSpace(req.TitleZh)
	req.TitleEn = strings.TrimSpace(req.TitleEn)
	if msg := validateTitles(req.TitleZh, req.TitleEn); msg != "" {
		WriteBadRequest(w, msg)
		return
	}

	status := model.ProjectStatusActive
	if req.Status != "" {
		var ok bool
		if status, ok = model.ParseProjectStatus(req.Status); !ok {
			WriteBadRequest(w, "Invalid status. Must be one of: "+model.ProjectStatusList())
			return
		}
	}

	req.DemoURL = strings.TrimSpace(req.DemoURL)
	req.GithubURL = strings.TrimSpace(req.GithubURL)
	if msg := validateProjectURLs(req.DemoURL, req.GithubURL); msg != "" {
		WriteBadRequest(w, msg)
		return
	}

	techStack, ok := normalizeList(req.TechStack, maxTechStack)
	if !ok {
		WriteBadRequest(w, "Too many tech_stack entries (max "+strconv.Itoa(maxTechStack)+")")
		return
	}

	slug, ok := h.resolveSlug(w, r, req.Slug, "project", h.projectSlugExists(0), req.TitleEn, req.TitleZh)
	if !ok {
		return
	}

	project, err := h.store.CreateProject(ctx, store.CreateProjectParams{
		Slug:          slug,
		TitleZh:       req.TitleZh,
		TitleEn:       req.TitleEn,
		DescriptionZh: req.DescriptionZh,
		DescriptionEn: req.DescriptionEn,
		CoverImage:    strings.TrimSpace(req.CoverImage),
		TechStack:     techStack,
		DemoURL:       req.DemoURL,
		GithubURL:     req.GithubURL,
		Featured:      req.Featured,
		Status:        string(status),
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		h.writeWriteError(w, r, "project", "create", err)
		return
	}

	slog.InfoContext(ctx, "project created",
		"category", model.EventCategoryContent,
		"project_id", project.ID,
		"slug", project.Slug,
	)

	WriteCreated(w, project)
}

// UpdateProject handles PUT /api/projects/{slug}.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.TitleZh, req.TitleEn = trimPtr(req.TitleZh), trimPtr(req.TitleEn)
	if msg := validateTitles(stringOr(req.TitleZh, existing.TitleZh), stringOr(req.TitleEn, existing.TitleEn)); msg != "" {
		WriteBadRequest(w, msg)
		return
	}

	params := store.UpdateProjectParams{
		ID:            existing.ID,
		TitleZh:       util.NullStringFromPtr(req.TitleZh),
		TitleEn:       util.NullStringFromPtr(req.TitleEn),
		DescriptionZh: util.NullStringFromPtr(req.DescriptionZh),
		DescriptionEn: util.NullStringFromPtr(req.DescriptionEn),
		CoverImage:    util.NullStringFromPtr(req.CoverImage),
		Featured:      util.NullBoolFromPtr(req.Featured),
		SortOrder:     util.NullInt32FromPtr(req.SortOrder),
	}

	if req.Status != nil {
		status, ok := model.ParseProjectStatus(*req.Status)
		if !ok {
			WriteBadRequest(w, "Invalid status. Must be one of: "+model.ProjectStatusList())
			return
		}
		params.Status = sql.NullString{String: string(status), Valid: true}
	}

	demoURL := strings.TrimSpace(stringOr(req.DemoURL, ""))
	githubURL := strings.TrimSpace(stringOr(req.GithubURL, ""))
	if msg := validateProjectURLs(demoURL, githubURL); msg != "" {
		WriteBadRequest(w, msg)
		return
	}
	if req.DemoURL != nil {
		params.DemoURL = sql.NullString{String: demoURL, Valid: true}
	}
	if req.GithubURL != nil {
		params.GithubURL = sql.NullString{String: githubURL, Valid: true}
	}

	if req.TechStack != nil {
		techStack, ok := normalizeList(*req.TechStack, maxTechStack)
		if !ok {
			WriteBadRequest(w, "Too many tech_stack entries (max "+strconv.Itoa(maxTechStack)+")")
			return
		}
		params.TechStack = techStack
	}

	if !h.checkSlugChange(w, r, req.Slug, existing.Slug, h.projectSlugExists(existing.ID)) {
		return
	}
	params.Slug = util.NullStringFromPtr(req.Slug)

	project, err := h.store.UpdateProject(ctx, params)
	if err != nil {
		h.writeWriteError(w, r, "project", "update", err)
		return
	}

	slog.InfoContext(ctx, "project updated",
		"category", model.EventCategoryContent,
		"project_id", project.ID,
		"slug", project.Slug,
	)

	WriteSuccess(w, project)
}

// DeleteProject handles DELETE /api/projects/{slug}.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	project, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteProject(ctx, project.ID); err != nil {
		h.writeWriteError(w, r, "project", "delete", err)
		return
	}

	slog.InfoContext(ctx, "project deleted",
		"category", model.EventCategoryContent,
		"project_id", project.ID,
		"slug", project.Slug,
	)

	WriteMessage(w, "Project deleted")
}

// requireProject fetches the project named by the {slug} URL parameter.
func (h *Handler) requireProject(w http.ResponseWriter, r *http.Request) (store.Project, bool) {
	slug := chi.URLParam(r, "slug")
	return requireEntity(h, w, r, "project", func() (store.Project, error) {
		return h.store.GetProjectBySlug(r.Context(), slug)
	})
}

// projectSlugExists checks slugs against every project except excludeID.
func (h *Handler) projectSlugExists(excludeID int64) content.SlugExistsFunc {
	return func(ctx context.Context, slug string) (bool, error) {
		return h.store.ProjectSlugExists(ctx, slug, excludeID)
	}
}

func validateProjectURLs(demoURL, githubURL string) string {
	if !isValidURL(demoURL) {
		return "demo_url must be an http(s) URL"
	}
	if !isValidURL(githubURL) {
		return "github_url must be an http(s) URL"
	}
	return ""
}
