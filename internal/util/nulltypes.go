// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util converts optional request values into database/sql null types.
package util

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// NullStringFromPtr converts a pointer to string into sql.NullString.
// Returns a valid NullString if the pointer is non-nil, otherwise returns an invalid one.
func NullStringFromPtr(ptr *string) sql.NullString {
	if ptr != nil {
		return sql.NullString{String: *ptr, Valid: true}
	}
	return sql.NullString{}
}

// NullBoolFromPtr converts a pointer to bool into sql.NullBool.
func NullBoolFromPtr(ptr *bool) sql.NullBool {
	if ptr != nil {
		return sql.NullBool{Bool: *ptr, Valid: true}
	}
	return sql.NullBool{}
}

// NullInt32FromPtr converts a pointer to int32 into sql.NullInt32.
func NullInt32FromPtr(ptr *int32) sql.NullInt32 {
	if ptr != nil {
		return sql.NullInt32{Int32: *ptr, Valid: true}
	}
	return sql.NullInt32{}
}

// ParseNullBool parses an optional boolean query value.
// An empty string yields an invalid NullBool; "true"/"false"/"1"/"0" are accepted.
func ParseNullBool(s string) (sql.NullBool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullBool{}, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return sql.NullBool{}, fmt.Errorf("invalid boolean %q", s)
	}
	return sql.NullBool{Bool: v, Valid: true}, nil
}
