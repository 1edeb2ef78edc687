// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/folio/internal/store"
)

// MemStore is an in-memory store.Store with the same observable behaviour
// as the PostgreSQL implementation: sql.ErrNoRows for missing rows,
// store.ErrDuplicate for unique violations and rollback in ExecTx.
type MemStore struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    memData

	// Fail, when set, is consulted before every statement with the
	// method name and its first key argument. A non-nil result is returned
	// as the statement's error.
	Fail func(op, key string) error

	// Now supplies timestamps. Defaults to time.Now.
	Now func() time.Time

	// PingErr is returned by Ping.
	PingErr error
}

type memData struct {
	nextID   int64
	admins   map[int64]store.Admin
	articles map[int64]store.Article
	projects map[int64]store.Project
	timeline map[int64]store.TimelineEvent
	messages map[int64]store.Message
	config   map[string]store.SiteConfig
	kv       map[string]store.KVEntry
	events   []memEvent
}

type memEvent struct {
	store.CreateEventParams
	at time.Time
}

var _ store.Store = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		d: memData{
			admins:   map[int64]store.Admin{},
			articles: map[int64]store.Article{},
			projects: map[int64]store.Project{},
			timeline: map[int64]store.TimelineEvent{},
			messages: map[int64]store.Message{},
			config:   map[string]store.SiteConfig{},
			kv:       map[string]store.KVEntry{},
		},
	}
}

func (m *MemStore) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

func (m *MemStore) fail(op, key string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail(op, key)
}

func (m *MemStore) id() int64 {
	m.d.nextID++
	return m.d.nextID
}

func (d memData) clone() memData {
	c := memData{
		nextID:   d.nextID,
		admins:   maps.Clone(d.admins),
		articles: make(map[int64]store.Article, len(d.articles)),
		projects: make(map[int64]store.Project, len(d.projects)),
		timeline: maps.Clone(d.timeline),
		messages: maps.Clone(d.messages),
		config:   maps.Clone(d.config),
		kv:       maps.Clone(d.kv),
		events:   slices.Clone(d.events),
	}
	for id, a := range d.articles {
		a.Tags = slices.Clone(a.Tags)
		c.articles[id] = a
	}
	for id, p := range d.projects {
		p.TechStack = slices.Clone(p.TechStack)
		c.projects[id] = p
	}
	return c
}

// ExecTx runs fn and restores the previous state if it fails.
func (m *MemStore) ExecTx(ctx context.Context, fn func(store.Querier) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.d.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.d = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// Ping returns PingErr.
func (m *MemStore) Ping(context.Context) error {
	return m.PingErr
}

// Events returns the event log records written so far.
func (m *MemStore) Events() []store.CreateEventParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.CreateEventParams, len(m.d.events))
	for i, e := range m.d.events {
		out[i] = e.CreateEventParams
	}
	return out
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", store.ErrDuplicate, constraint)
}

func page[T any](items []T, limit, offset int32) []T {
	out := []T{}
	if offset < 0 || int(offset) >= len(items) {
		return out
	}
	end := len(items)
	if limit >= 0 && int(offset+limit) < end {
		end = int(offset + limit)
	}
	return append(out, items[offset:end]...)
}

func setString(dst *string, v sql.NullString) {
	if v.Valid {
		*dst = v.String
	}
}

func listOrEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return slices.Clone(items)
}

// Admins

func (m *MemStore) GetAdminByUsername(_ context.Context, username string) (store.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetAdminByUsername", username); err != nil {
		return store.Admin{}, err
	}
	for _, a := range m.d.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return store.Admin{}, sql.ErrNoRows
}

func (m *MemStore) AdminExists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AdminExists", username); err != nil {
		return false, err
	}
	for _, a := range m.d.admins {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) CountAdmins(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CountAdmins", ""); err != nil {
		return 0, err
	}
	return int64(len(m.d.admins)), nil
}

func (m *MemStore) CreateAdmin(_ context.Context, arg store.CreateAdminParams) (store.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateAdmin", arg.Username); err != nil {
		return store.Admin{}, err
	}
	for _, a := range m.d.admins {
		if a.Username == arg.Username {
			return store.Admin{}, duplicate("admins_username_key")
		}
	}
	now := m.now()
	a := store.Admin{ID: m.id(), Username: arg.Username, PasswordHash: arg.PasswordHash, CreatedAt: now, UpdatedAt: now}
	m.d.admins[a.ID] = a
	return a, nil
}

func (m *MemStore) UpdateAdminPassword(_ context.Context, arg store.UpdateAdminPasswordParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateAdminPassword", ""); err != nil {
		return err
	}
	a, ok := m.d.admins[arg.ID]
	if !ok {
		return sql.ErrNoRows
	}
	a.PasswordHash = arg.PasswordHash
	a.UpdatedAt = m.now()
	m.d.admins[a.ID] = a
	return nil
}

func (m *MemStore) TouchAdminLogin(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("TouchAdminLogin", ""); err != nil {
		return err
	}
	a, ok := m.d.admins[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := m.now()
	a.LastLoginAt = &now
	m.d.admins[id] = a
	return nil
}

// Articles

func (m *MemStore) filterArticles(f store.ArticleFilter) []store.Article {
	var out []store.Article
	for _, a := range m.d.articles {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.Tag != "" && !slices.Contains(a.Tags, f.Tag) {
			continue
		}
		a.Tags = slices.Clone(a.Tags)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].CreatedAt, out[j].CreatedAt
		if out[i].PublishedAt != nil {
			ti = *out[i].PublishedAt
		}
		if out[j].PublishedAt != nil {
			tj = *out[j].PublishedAt
		}
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *MemStore) ListArticles(_ context.Context, arg store.ListArticlesParams) ([]store.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListArticles", ""); err != nil {
		return nil, err
	}
	return page(m.filterArticles(arg.ArticleFilter), arg.Limit, arg.Offset), nil
}

func (m *MemStore) CountArticles(_ context.Context, filter store.ArticleFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CountArticles", ""); err != nil {
		return 0, err
	}
	return int64(len(m.filterArticles(filter))), nil
}

func (m *MemStore) articleBySlug(slug string) (store.Article, bool) {
	for _, a := range m.d.articles {
		if a.Slug == slug {
			a.Tags = slices.Clone(a.Tags)
			return a, true
		}
	}
	return store.Article{}, false
}

func (m *MemStore) GetArticleBySlug(_ context.Context, slug string) (store.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetArticleBySlug", slug); err != nil {
		return store.Article{}, err
	}
	a, ok := m.articleBySlug(slug)
	if !ok {
		return store.Article{}, sql.ErrNoRows
	}
	return a, nil
}

func (m *MemStore) ArticleSlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ArticleSlugExists", slug); err != nil {
		return false, err
	}
	a, ok := m.articleBySlug(slug)
	return ok && a.ID != excludeID, nil
}

func (m *MemStore) CreateArticle(_ context.Context, arg store.CreateArticleParams) (store.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateArticle", arg.Slug); err != nil {
		return store.Article{}, err
	}
	if _, taken := m.articleBySlug(arg.Slug); taken {
		return store.Article{}, duplicate("articles_slug_key")
	}
	now := m.now()
	a := store.Article{
		ID: m.id(), Slug: arg.Slug,
		TitleZh: arg.TitleZh, TitleEn: arg.TitleEn,
		ContentZh: arg.ContentZh, ContentEn: arg.ContentEn,
		ExcerptZh: arg.ExcerptZh, ExcerptEn: arg.ExcerptEn,
		CoverImage: arg.CoverImage, Category: arg.Category,
		Tags: listOrEmpty(arg.Tags), Status: arg.Status, Author: arg.Author,
		CreatedAt: now, UpdatedAt: now,
	}
	if a.Status == "published" {
		a.PublishedAt = &now
	}
	m.d.articles[a.ID] = a
	a.Tags = slices.Clone(a.Tags)
	return a, nil
}

func (m *MemStore) UpdateArticle(_ context.Context, arg store.UpdateArticleParams) (store.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateArticle", arg.Slug.String); err != nil {
		return store.Article{}, err
	}
	a, ok := m.d.articles[arg.ID]
	if !ok {
		return store.Article{}, sql.ErrNoRows
	}
	if arg.Slug.Valid {
		if other, taken := m.articleBySlug(arg.Slug.String); taken && other.ID != a.ID {
			return store.Article{}, duplicate("articles_slug_key")
		}
	}
	setString(&a.Slug, arg.Slug)
	setString(&a.TitleZh, arg.TitleZh)
	setString(&a.TitleEn, arg.TitleEn)
	setString(&a.ContentZh, arg.ContentZh)
	setString(&a.ContentEn, arg.ContentEn)
	setString(&a.ExcerptZh, arg.ExcerptZh)
	setString(&a.ExcerptEn, arg.ExcerptEn)
	setString(&a.CoverImage, arg.CoverImage)
	setString(&a.Category, arg.Category)
	setString(&a.Status, arg.Status)
	setString(&a.Author, arg.Author)
	if arg.Tags != nil {
		a.Tags = slices.Clone(arg.Tags)
	}
	now := m.now()
	if a.Status == "published" && a.PublishedAt == nil {
		a.PublishedAt = &now
	}
	a.UpdatedAt = now
	m.d.articles[a.ID] = a
	a.Tags = slices.Clone(a.Tags)
	return a, nil
}

func (m *MemStore) DeleteArticle(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteArticle", ""); err != nil {
		return err
	}
	if _, ok := m.d.articles[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.d.articles, id)
	return nil
}

func (m *MemStore) IncrementArticleViews(_ context.Context, slug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("IncrementArticleViews", slug); err != nil {
		return 0, err
	}
	a, ok := m.articleBySlug(slug)
	if !ok {
		return 0, sql.ErrNoRows
	}
	a.ViewCount++
	m.d.articles[a.ID] = a
	return a.ViewCount, nil
}

// Projects

func (m *MemStore) filterProjects(f store.ProjectFilter) []store.Project {
	var out []store.Project
	for _, p := range m.d.projects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Featured.Valid && p.Featured != f.Featured.Bool {
			continue
		}
		p.TechStack = slices.Clone(p.TechStack)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

func (m *MemStore) ListProjects(_ context.Context, arg store.ListProjectsParams) ([]store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListProjects", ""); err != nil {
		return nil, err
	}
	return page(m.filterProjects(arg.ProjectFilter), arg.Limit, arg.Offset), nil
}

func (m *MemStore) CountProjects(_ context.Context, filter store.ProjectFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CountProjects", ""); err != nil {
		return 0, err
	}
	return int64(len(m.filterProjects(filter))), nil
}

func (m *MemStore) projectBySlug(slug string) (store.Project, bool) {
	for _, p := range m.d.projects {
		if p.Slug == slug {
			p.TechStack = slices.Clone(p.TechStack)
			return p, true
		}
	}
	return store.Project{}, false
}

func (m *MemStore) GetProjectBySlug(_ context.Context, slug string) (store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetProjectBySlug", slug); err != nil {
		return store.Project{}, err
	}
	p, ok := m.projectBySlug(slug)
	if !ok {
		return store.Project{}, sql.ErrNoRows
	}
	return p, nil
}

func (m *MemStore) ProjectSlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ProjectSlugExists", slug); err != nil {
		return false, err
	}
	p, ok := m.projectBySlug(slug)
	return ok && p.ID != excludeID, nil
}

func (m *MemStore) CreateProject(_ context.Context, arg store.CreateProjectParams) (store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateProject", arg.Slug); err != nil {
		return store.Project{}, err
	}
	if _, taken := m.projectBySlug(arg.Slug); taken {
		return store.Project{}, duplicate("projects_slug_key")
	}
	now := m.now()
	p := store.Project{
		ID: m.id(), Slug: arg.Slug,
		TitleZh: arg.TitleZh, TitleEn: arg.TitleEn,
		DescriptionZh: arg.DescriptionZh, DescriptionEn: arg.DescriptionEn,
		CoverImage: arg.CoverImage, TechStack: listOrEmpty(arg.TechStack),
		DemoURL: arg.DemoURL, GithubURL: arg.GithubURL,
		Featured: arg.Featured, Status: arg.Status, SortOrder: arg.SortOrder,
		CreatedAt: now, UpdatedAt: now,
	}
	m.d.projects[p.ID] = p
	p.TechStack = slices.Clone(p.TechStack)
	return p, nil
}

func (m *MemStore) UpdateProject(_ context.Context, arg store.UpdateProjectParams) (store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateProject", arg.Slug.String); err != nil {
		return store.Project{}, err
	}
	p, ok := m.d.projects[arg.ID]
	if !ok {
		return store.Project{}, sql.ErrNoRows
	}
	if arg.Slug.Valid {
		if other, taken := m.projectBySlug(arg.Slug.String); taken && other.ID != p.ID {
			return store.Project{}, duplicate("projects_slug_key")
		}
	}
	setString(&p.Slug, arg.Slug)
	setString(&p.TitleZh, arg.TitleZh)
	setString(&p.TitleEn, arg.TitleEn)
	setString(&p.DescriptionZh, arg.DescriptionZh)
	setString(&p.DescriptionEn, arg.DescriptionEn)
	setString(&p.CoverImage, arg.CoverImage)
	setString(&p.DemoURL, arg.DemoURL)
	setString(&p.GithubURL, arg.GithubURL)
	setString(&p.Status, arg.Status)
	if arg.TechStack != nil {
		p.TechStack = slices.Clone(arg.TechStack)
	}
	if arg.Featured.Valid {
		p.Featured = arg.Featured.Bool
	}
	if arg.SortOrder.Valid {
		p.SortOrder = arg.SortOrder.Int32
	}
	p.UpdatedAt = m.now()
	m.d.projects[p.ID] = p
	p.TechStack = slices.Clone(p.TechStack)
	return p, nil
}

func (m *MemStore) DeleteProject(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteProject", ""); err != nil {
		return err
	}
	if _, ok := m.d.projects[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.d.projects, id)
	return nil
}

// Timeline

func (m *MemStore) filterTimeline(eventType string) []store.TimelineEvent {
	var out []store.TimelineEvent
	for _, e := range m.d.timeline {
		if eventType == "" || e.Type == eventType {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.ID > b.ID
	})
	return out
}

func (m *MemStore) ListTimelineEvents(_ context.Context, arg store.ListTimelineEventsParams) ([]store.TimelineEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListTimelineEvents", ""); err != nil {
		return nil, err
	}
	return page(m.filterTimeline(arg.Type), arg.Limit, arg.Offset), nil
}

func (m *MemStore) CountTimelineEvents(_ context.Context, eventType string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CountTimelineEvents", ""); err != nil {
		return 0, err
	}
	return int64(len(m.filterTimeline(eventType))), nil
}

func (m *MemStore) GetTimelineEvent(_ context.Context, id int64) (store.TimelineEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetTimelineEvent", ""); err != nil {
		return store.TimelineEvent{}, err
	}
	e, ok := m.d.timeline[id]
	if !ok {
		return store.TimelineEvent{}, sql.ErrNoRows
	}
	return e, nil
}

func (m *MemStore) CreateTimelineEvent(_ context.Context, arg store.CreateTimelineEventParams) (store.TimelineEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateTimelineEvent", ""); err != nil {
		return store.TimelineEvent{}, err
	}
	now := m.now()
	e := store.TimelineEvent{
		ID: m.id(), TitleZh: arg.TitleZh, TitleEn: arg.TitleEn,
		DescriptionZh: arg.DescriptionZh, DescriptionEn: arg.DescriptionEn,
		Date: arg.Date, Type: arg.Type, SortOrder: arg.SortOrder,
		CreatedAt: now, UpdatedAt: now,
	}
	m.d.timeline[e.ID] = e
	return e, nil
}

func (m *MemStore) UpdateTimelineEvent(_ context.Context, arg store.UpdateTimelineEventParams) (store.TimelineEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateTimelineEvent", ""); err != nil {
		return store.TimelineEvent{}, err
	}
	e, ok := m.d.timeline[arg.ID]
	if !ok {
		return store.TimelineEvent{}, sql.ErrNoRows
	}
	setString(&e.TitleZh, arg.TitleZh)
	setString(&e.TitleEn, arg.TitleEn)
	setString(&e.DescriptionZh, arg.DescriptionZh)
	setString(&e.DescriptionEn, arg.DescriptionEn)
	setString(&e.Date, arg.Date)
	setString(&e.Type, arg.Type)
	if arg.SortOrder.Valid {
		e.SortOrder = arg.SortOrder.Int32
	}
	e.UpdatedAt = m.now()
	m.d.timeline[e.ID] = e
	return e, nil
}

func (m *MemStore) DeleteTimelineEvent(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteTimelineEvent", ""); err != nil {
		return err
	}
	if _, ok := m.d.timeline[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.d.timeline, id)
	return nil
}

// Messages

func (m *MemStore) filterMessages(f store.MessageFilter) []store.Message {
	var out []store.Message
	for _, msg := range m.d.messages {
		if f.Read.Valid && msg.Read != f.Read.Bool {
			continue
		}
		if f.Replied.Valid && msg.Replied != f.Replied.Bool {
			continue
		}
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *MemStore) ListMessages(_ context.Context, arg store.ListMessagesParams) ([]store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListMessages", ""); err != nil {
		return nil, err
	}
	return page(m.filterMessages(arg.MessageFilter), arg.Limit, arg.Offset), nil
}

func (m *MemStore) CountMessages(_ context.Context, filter store.MessageFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CountMessages", ""); err != nil {
		return 0, err
	}
	return int64(len(m.filterMessages(filter))), nil
}

func (m *MemStore) GetMessage(_ context.Context, id int64) (store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetMessage", ""); err != nil {
		return store.Message{}, err
	}
	msg, ok := m.d.messages[id]
	if !ok {
		return store.Message{}, sql.ErrNoRows
	}
	return msg, nil
}

func (m *MemStore) CreateMessage(_ context.Context, arg store.CreateMessageParams) (store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateMessage", arg.Email); err != nil {
		return store.Message{}, err
	}
	msg := store.Message{
		ID: m.id(), Name: arg.Name, Email: arg.Email,
		Subject: arg.Subject, Content: arg.Content, CreatedAt: m.now(),
	}
	m.d.messages[msg.ID] = msg
	return msg, nil
}

func (m *MemStore) UpdateMessage(_ context.Context, arg store.UpdateMessageParams) (store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateMessage", ""); err != nil {
		return store.Message{}, err
	}
	msg, ok := m.d.messages[arg.ID]
	if !ok {
		return store.Message{}, sql.ErrNoRows
	}
	if arg.Read.Valid {
		msg.Read = arg.Read.Bool
	}
	if arg.Replied.Valid {
		msg.Replied = arg.Replied.Bool
	}
	m.d.messages[msg.ID] = msg
	return msg, nil
}

func (m *MemStore) DeleteMessage(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteMessage", ""); err != nil {
		return err
	}
	if _, ok := m.d.messages[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.d.messages, id)
	return nil
}

// Site config

func (m *MemStore) ListSiteConfig(context.Context) ([]store.SiteConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListSiteConfig", ""); err != nil {
		return nil, err
	}
	out := []store.SiteConfig{}
	for _, key := range slices.Sorted(maps.Keys(m.d.config)) {
		out = append(out, m.d.config[key])
	}
	return out, nil
}

func (m *MemStore) GetSiteConfig(_ context.Context, key string) (store.SiteConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetSiteConfig", key); err != nil {
		return store.SiteConfig{}, err
	}
	c, ok := m.d.config[key]
	if !ok {
		return store.SiteConfig{}, sql.ErrNoRows
	}
	return c, nil
}

func (m *MemStore) UpsertSiteConfig(_ context.Context, key string, value json.RawMessage) (store.SiteConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpsertSiteConfig", key); err != nil {
		return store.SiteConfig{}, err
	}
	c := store.SiteConfig{Key: key, Value: slices.Clone(value), UpdatedAt: m.now()}
	m.d.config[key] = c
	return c, nil
}

func (m *MemStore) DeleteSiteConfig(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteSiteConfig", key); err != nil {
		return err
	}
	if _, ok := m.d.config[key]; !ok {
		return sql.ErrNoRows
	}
	delete(m.d.config, key)
	return nil
}

// Key-value collections

func kvKey(namespace, key string) string {
	return namespace + "\x00" + key
}

func (m *MemStore) ListKV(_ context.Context, namespace string) ([]store.KVEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListKV", namespace); err != nil {
		return nil, err
	}
	out := []store.KVEntry{}
	for _, k := range slices.Sorted(maps.Keys(m.d.kv)) {
		if strings.HasPrefix(k, namespace+"\x00") {
			out = append(out, m.d.kv[k])
		}
	}
	return out, nil
}

func (m *MemStore) GetKV(_ context.Context, namespace, key string) (store.KVEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetKV", key); err != nil {
		return store.KVEntry{}, err
	}
	e, ok := m.d.kv[kvKey(namespace, key)]
	if !ok {
		return store.KVEntry{}, sql.ErrNoRows
	}
	return e, nil
}

func (m *MemStore) PutKV(_ context.Context, namespace, key string, value json.RawMessage) (store.KVEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("PutKV", key); err != nil {
		return store.KVEntry{}, err
	}
	e := store.KVEntry{Namespace: namespace, Key: key, Value: slices.Clone(value), UpdatedAt: m.now()}
	m.d.kv[kvKey(namespace, key)] = e
	return e, nil
}

func (m *MemStore) DeleteKV(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteKV", key); err != nil {
		return err
	}
	k := kvKey(namespace, key)
	if _, ok := m.d.kv[k]; !ok {
		return sql.ErrNoRows
	}
	delete(m.d.kv, k)
	return nil
}

// Event log

func (m *MemStore) CreateEvent(_ context.Context, arg store.CreateEventParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateEvent", arg.Category); err != nil {
		return err
	}
	m.d.events = append(m.d.events, memEvent{CreateEventParams: arg, at: m.now()})
	return nil
}

func (m *MemStore) DeleteEventsBefore(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteEventsBefore", ""); err != nil {
		return 0, err
	}
	n := len(m.d.events)
	m.d.events = slices.DeleteFunc(m.d.events, func(e memEvent) bool { return e.at.Before(before) })
	return int64(n - len(m.d.events)), nil
}
