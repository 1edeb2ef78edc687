// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// TimelineType classifies a timeline event.
type TimelineType string

// Timeline event types
const (
	TimelineTypeWork        TimelineType = "work"
	TimelineTypeEducation   TimelineType = "education"
	TimelineTypeAchievement TimelineType = "achievement"
)

// TimelineTypes lists every valid TimelineType.
var TimelineTypes = []TimelineType{TimelineTypeWork, TimelineTypeEducation, TimelineTypeAchievement}

// ParseTimelineType returns the TimelineType named by s.
func ParseTimelineType(s string) (TimelineType, bool) {
	return parseEnum(s, TimelineTypes)
}

// TimelineTypeList returns the allowed types joined for messages.
func TimelineTypeList() string {
	return strings.Join(enumStrings(TimelineTypes), ", ")
}

// DateLayout is the wire format of timeline dates.
const DateLayout = "2006-01-02"

// ParseTimelineDate accepts YYYY-MM-DD or YYYY-MM. A month-only date
// resolves to the first day of that month.
func ParseTimelineDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
