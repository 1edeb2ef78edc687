// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Visitor message field limits, counted in runes.
const (
	MaxMessageNameRunes    = 100
	MaxMessageEmailRunes   = 254
	MaxMessageSubjectRunes = 200
	MaxMessageContentRunes = 5000
)
