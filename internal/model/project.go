// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// ProjectStatus is the lifecycle state of a portfolio project.
type ProjectStatus string

// Project statuses
const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// ProjectStatuses lists every valid ProjectStatus.
var ProjectStatuses = []ProjectStatus{ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived}

// ParseProjectStatus returns the ProjectStatus named by s.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	return parseEnum(s, ProjectStatuses)
}

// ProjectStatusList returns the allowed statuses joined for messages.
func ProjectStatusList() string {
	return strings.Join(enumStrings(ProjectStatuses), ", ")
}

// ArticleStatusList returns the allowed statuses joined for messages.
func ArticleStatusList() string {
	return strings.Join(enumStrings(ArticleStatuses), ", ")
}
