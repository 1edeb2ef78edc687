// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"encoding/json"
	"time"
)

// Admin is an administrator account.
type Admin struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Article is a bilingual blog post.
type Article struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	TitleZh     string     `json:"title_zh"`
	TitleEn     string     `json:"title_en"`
	ContentZh   string     `json:"content_zh"`
	ContentEn   string     `json:"content_en"`
	ExcerptZh   string     `json:"excerpt_zh"`
	ExcerptEn   string     `json:"excerpt_en"`
	CoverImage  string     `json:"cover_image"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	Author      string     `json:"author"`
	ViewCount   int64      `json:"view_count"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Project is a portfolio entry.
type Project struct {
	ID            int64     `json:"id"`
	Slug          string    `json:"slug"`
	TitleZh       string    `json:"title_zh"`
	TitleEn       string    `json:"title_en"`
	DescriptionZh string    `json:"description_zh"`
	DescriptionEn string    `json:"description_en"`
	CoverImage    string    `json:"cover_image"`
	TechStack     []string  `json:"tech_stack"`
	DemoURL       string    `json:"demo_url"`
	GithubURL     string    `json:"github_url"`
	Featured      bool      `json:"featured"`
	Status        string    `json:"status"`
	SortOrder     int32     `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TimelineEvent is a dated career milestone. Date is formatted YYYY-MM-DD.
type TimelineEvent struct {
	ID            int64     `json:"id"`
	TitleZh       string    `json:"title_zh"`
	TitleEn       string    `json:"title_en"`
	DescriptionZh string    `json:"description_zh"`
	DescriptionEn string    `json:"description_en"`
	Date          string    `json:"date"`
	Type          string    `json:"type"`
	SortOrder     int32     `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Message is a visitor contact submission.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	Replied   bool      `json:"replied"`
	CreatedAt time.Time `json:"created_at"`
}

// SiteConfig is a site-wide setting holding arbitrary JSON.
type SiteConfig struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// KVEntry is an item of a namespaced key-value collection.
type KVEntry struct {
	Namespace string          `json:"namespace"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}
