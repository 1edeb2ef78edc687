// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/folio/internal/content"
	"github.com/olegiv/folio/internal/model"
)

// validateTitles checks a bilingual title pair. At least one language is
// required.
func validateTitles(zh, en string) string {
	if strings.TrimSpace(zh) == "" && strings.TrimSpace(en) == "" {
		return "Title is required (title_zh or title_en)"
	}
	if utf8.RuneCountInString(zh) > model.MaxTitleLength || utf8.RuneCountInString(en) > model.MaxTitleLength {
		return "Title must be at most " + strconv.Itoa(model.MaxTitleLength) + " characters"
	}
	return ""
}

// normalizeList trims items, drops blanks and duplicates, and reports
// whether the result fits within limit. The result is never nil.
func normalizeList(items []string, limit int) ([]string, bool) {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out, len(out) <= limit
}

// isValidURL accepts empty strings and absolute http(s) URLs.
func isValidURL(s string) bool {
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// resolveSlug validates an explicit slug or derives a unique one from the
// titles. It writes the error response and returns false on failure.
func (h *Handler) resolveSlug(w http.ResponseWriter, r *http.Request, explicit, fallback string, exists content.SlugExistsFunc, titles ...string) (string, bool) {
	ctx := r.Context()

	if slug := strings.TrimSpace(explicit); slug != "" {
		if !content.IsValidSlug(slug) {
			WriteBadRequest(w, "Invalid slug: use lowercase letters, digits and single hyphens")
			return "", false
		}
		if !h.checkSlugUnique(w, r, func() (bool, error) { return exists(ctx, slug) }) {
			return "", false
		}
		return slug, true
	}

	slug, err := content.UniqueSlug(ctx, content.SlugFromTitles(titles...), fallback, exists)
	if err != nil {
		if errors.Is(err, content.ErrSlugExhausted) {
			WriteBadRequest(w, "Could not generate a unique slug; please provide one")
			return "", false
		}
		h.writeInternalError(w, r, "Failed to generate slug", err)
		return "", false
	}
	return slug, true
}

// checkSlugChange validates a slug update. exists must ignore the row being
// updated. A nil or unchanged slug is accepted as is.
func (h *Handler) checkSlugChange(w http.ResponseWriter, r *http.Request, slug *string, current string, exists content.SlugExistsFunc) bool {
	if slug == nil {
		return true
	}
	*slug = strings.TrimSpace(*slug)
	if *slug == current {
		return true
	}
	if !content.IsValidSlug(*slug) {
		WriteBadRequest(w, "Invalid slug: use lowercase letters, digits and single hyphens")
		return false
	}
	return h.checkSlugUnique(w, r, func() (bool, error) { return exists(r.Context(), *slug) })
}

// trimPtr returns p with surrounding whitespace removed, keeping nil as nil.
func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// stringOr returns *update when set, otherwise current.
func stringOr(update *string, current string) string {
	if update != nil {
		return *update
	}
	return current
}
