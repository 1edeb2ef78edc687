// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the closed enumerations and field rules shared by
// the store and the HTTP handlers.
package model

// ArticleStatus is the publication state of an article.
type ArticleStatus string

// Article statuses
const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// ArticleStatuses lists every valid ArticleStatus.
var ArticleStatuses = []ArticleStatus{ArticleStatusDraft, ArticleStatusPublished}

// ParseArticleStatus returns the ArticleStatus named by s.
func ParseArticleStatus(s string) (ArticleStatus, bool) {
	return parseEnum(s, ArticleStatuses)
}

// IsPublished returns true if the status is published.
func (s ArticleStatus) IsPublished() bool {
	return s == ArticleStatusPublished
}

// Article field limits.
const (
	MaxSlugLength    = 200
	MaxTitleLength   = 300
	MaxExcerptRunes  = 160
	MaxTagCount      = 30
	MaxCategoryRunes = 100
)

// DefaultAuthor is stored when an article is created without an author.
const DefaultAuthor = "admin"

// parseEnum matches s against a closed set of string-backed values.
func parseEnum[T ~string](s string, values []T) (T, bool) {
	for _, v := range values {
		if string(v) == s {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// enumStrings converts a closed set to plain strings for error messages.
func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
