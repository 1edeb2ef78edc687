// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"regexp"
	"strings"
)

// Namespace names a key-value collection managed by the admin.
type Namespace string

// Key-value namespaces
const (
	NamespaceInterests Namespace = "interests"
	NamespacePlans     Namespace = "plans"
	NamespaceNav       Namespace = "nav"
	NamespaceSections  Namespace = "sections"
)

// Namespaces lists every valid Namespace.
var Namespaces = []Namespace{NamespaceInterests, NamespacePlans, NamespaceNav, NamespaceSections}

// ParseNamespace returns the Namespace named by s.
func ParseNamespace(s string) (Namespace, bool) {
	return parseEnum(s, Namespaces)
}

// NamespaceList returns the valid namespaces as a comma-separated string.
func NamespaceList() string {
	return strings.Join(enumStrings(Namespaces), ", ")
}

// keyPattern matches site-config and key-value keys.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,100}$`)

// IsValidKey reports whether key is usable as a site-config or key-value key.
func IsValidKey(key string) bool {
	return keyPattern.MatchString(key)
}
