// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"html"
	"net/mail"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mileusna/useragent"
)

// stripPolicy removes every HTML element, keeping text content.
var stripPolicy = bluemonday.StrictPolicy()

// StripMarkup removes HTML from visitor-supplied text and trims it.
// Entities produced by the sanitiser are decoded so plain text is stored as typed.
func StripMarkup(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// NormalizeEmail validates a bare email address and returns it trimmed.
// Display-name forms such as "A <a@b.com>" are rejected.
func NormalizeEmail(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return "", false
	}
	return s, true
}

// IsBot reports whether a User-Agent belongs to a crawler. An empty
// User-Agent is treated as automated.
func IsBot(userAgent string) bool {
	if strings.TrimSpace(userAgent) == "" {
		return true
	}
	return useragent.Parse(userAgent).Bot
}
