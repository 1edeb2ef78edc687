// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestParseArticleStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   ArticleStatus
		wantOK bool
	}{
		{"draft", ArticleStatusDraft, true},
		{"published", ArticleStatusPublished, true},
		{"Published", "", false},
		{"", "", false},
		{"archived", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseArticleStatus(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseArticleStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
	if !ArticleStatusPublished.IsPublished() || ArticleStatusDraft.IsPublished() {
		t.Error("IsPublished mismatch")
	}
}

func TestParseTimelineType(t *testing.T) {
	for _, typ := range []string{"work", "education", "achievement"} {
		if _, ok := ParseTimelineType(typ); !ok {
			t.Errorf("ParseTimelineType(%q) rejected a valid type", typ)
		}
	}
	if _, ok := ParseTimelineType("invalid"); ok {
		t.Error("ParseTimelineType accepted an invalid type")
	}
	if got := TimelineTypeList(); got != "work, education, achievement" {
		t.Errorf("TimelineTypeList() = %q", got)
	}
}

func TestParseProjectStatus(t *testing.T) {
	if _, ok := ParseProjectStatus("completed"); !ok {
		t.Error("completed should be valid")
	}
	if _, ok := ParseProjectStatus("draft"); ok {
		t.Error("draft is not a project status")
	}
}

func TestParseTimelineDate(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2023-07-15", "2023-07-15", true},
		{"2023-07", "2023-07-01", true},
		{" 2020-01-02 ", "2020-01-02", true},
		{"2023/07/15", "", false},
		{"July 2023", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTimelineDate(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseTimelineDate(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && got.Format(DateLayout) != tt.want {
			t.Errorf("ParseTimelineDate(%q) = %s, want %s", tt.in, got.Format(DateLayout), tt.want)
		}
		if ok && got.Location() != time.UTC {
			t.Errorf("ParseTimelineDate(%q) location = %v, want UTC", tt.in, got.Location())
		}
	}
}

func TestParseNamespace(t *testing.T) {
	if ns, ok := ParseNamespace("nav"); !ok || ns != NamespaceNav {
		t.Errorf("ParseNamespace(nav) = (%q, %v)", ns, ok)
	}
	if _, ok := ParseNamespace("secrets"); ok {
		t.Error("unknown namespace accepted")
	}
}

func TestIsValidKey(t *testing.T) {
	valid := []string{"site_name", "hero.title", "social:github", "a-b"}
	for _, k := range valid {
		if !IsValidKey(k) {
			t.Errorf("IsValidKey(%q) = false", k)
		}
	}
	invalid := []string{"", "has space", "semi;colon", string(make([]byte, 101))}
	for _, k := range invalid {
		if IsValidKey(k) {
			t.Errorf("IsValidKey(%q) = true", k)
		}
	}
}
