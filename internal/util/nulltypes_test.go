// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"testing"
)

func TestNullStringFromPtr(t *testing.T) {
	empty := ""
	title := "Title"

	if got := NullStringFromPtr(nil); got.Valid {
		t.Errorf("nil pointer should be invalid, got %v", got)
	}
	if got := NullStringFromPtr(&empty); !got.Valid || got.String != "" {
		t.Errorf("empty string should be a valid empty value, got %v", got)
	}
	if got := NullStringFromPtr(&title); got != (sql.NullString{String: "Title", Valid: true}) {
		t.Errorf("NullStringFromPtr(&title) = %v", got)
	}
}

func TestNullBoolAndInt32FromPtr(t *testing.T) {
	f := false
	var n int32 = 0

	if got := NullBoolFromPtr(&f); !got.Valid || got.Bool {
		t.Errorf("NullBoolFromPtr(&false) = %v", got)
	}
	if NullBoolFromPtr(nil).Valid {
		t.Error("NullBoolFromPtr(nil) should be invalid")
	}
	if got := NullInt32FromPtr(&n); !got.Valid || got.Int32 != 0 {
		t.Errorf("NullInt32FromPtr(&0) = %v", got)
	}
	if NullInt32FromPtr(nil).Valid {
		t.Error("NullInt32FromPtr(nil) should be invalid")
	}
}

func TestParseNullBool(t *testing.T) {
	tests := []struct {
		input   string
		want    sql.NullBool
		wantErr bool
	}{
		{"", sql.NullBool{}, false},
		{"true", sql.NullBool{Bool: true, Valid: true}, false},
		{"0", sql.NullBool{Bool: false, Valid: true}, false},
		{" false ", sql.NullBool{Bool: false, Valid: true}, false},
		{"maybe", sql.NullBool{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNullBool(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNullBool(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseNullBool(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
