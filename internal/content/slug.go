// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content prepares user-supplied text for storage: URL slugs,
// plain-text excerpts from markdown and sanitised visitor messages.
package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/olegiv/folio/internal/model"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

const (
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 6
	maxSlugTries   = 5
)

// ErrSlugExhausted is returned when no free slug could be found.
var ErrSlugExhausted = errors.New("could not generate a unique slug")

// Slugify converts a string to a URL-friendly slug.
// Accents are stripped and non-Latin scripts are transliterated, so
// "半导体 Café" becomes "ban-dao-ti-cafe".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(unidecode.Unidecode(result))
	result = strings.Join(strings.Fields(result), "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > model.MaxSlugLength {
		result = strings.TrimRight(result[:model.MaxSlugLength], "-")
	}
	return result
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > model.MaxSlugLength {
		return false
	}

	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}

// SlugFromTitles slugifies the first title that yields a non-empty slug.
func SlugFromTitles(titles ...string) string {
	for _, title := range titles {
		if slug := Slugify(title); slug != "" {
			return slug
		}
	}
	return ""
}

// SlugExistsFunc reports whether a slug is already taken.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// UniqueSlug returns base when it is free, otherwise base with a random
// suffix. An empty base is replaced by fallback.
func UniqueSlug(ctx context.Context, base, fallback string, exists SlugExistsFunc) (string, error) {
	if base == "" {
		base = fallback
	}

	taken, err := exists(ctx, base)
	if err != nil {
		return "", fmt.Errorf("checking slug: %w", err)
	}
	if !taken {
		return base, nil
	}

	stem := base
	if limit := model.MaxSlugLength - suffixLength - 1; len(stem) > limit {
		stem = strings.TrimRight(stem[:limit], "-")
	}
	for range maxSlugTries {
		suffix, err := gonanoid.Generate(suffixAlphabet, suffixLength)
		if err != nil {
			return "", fmt.Errorf("generating slug suffix: %w", err)
		}
		candidate := stem + "-" + suffix
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugExhausted
}
