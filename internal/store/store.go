// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides PostgreSQL persistence for folio content.
//
// Queries follows the sqlc layout: one method per statement, all bound to a
// DBTX so the same code runs against a pool or inside a transaction.
// Lookups of missing rows return sql.ErrNoRows, as do updates and deletes
// that match nothing.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ErrDuplicate is returned when an insert or update violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs folio statements against a DBTX.
type Queries struct {
	db DBTX
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Querier lists every statement the application issues.
type Querier interface {
	// Admins
	GetAdminByUsername(ctx context.Context, username string) (Admin, error)
	AdminExists(ctx context.Context, username string) (bool, error)
	CountAdmins(ctx context.Context) (int64, error)
	CreateAdmin(ctx context.Context, arg CreateAdminParams) (Admin, error)
	UpdateAdminPassword(ctx context.Context, arg UpdateAdminPasswordParams) error
	TouchAdminLogin(ctx context.Context, id int64) error

	// Articles
	ListArticles(ctx context.Context, arg ListArticlesParams) ([]Article, error)
	CountArticles(ctx context.Context, filter ArticleFilter) (int64, error)
	GetArticleBySlug(ctx context.Context, slug string) (Article, error)
	ArticleSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error)
	UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error)
	DeleteArticle(ctx context.Context, id int64) error
	IncrementArticleViews(ctx context.Context, slug string) (int64, error)

	// Projects
	ListProjects(ctx context.Context, arg ListProjectsParams) ([]Project, error)
	CountProjects(ctx context.Context, filter ProjectFilter) (int64, error)
	GetProjectBySlug(ctx context.Context, slug string) (Project, error)
	ProjectSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error)
	UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error)
	DeleteProject(ctx context.Context, id int64) error

	// Timeline
	ListTimelineEvents(ctx context.Context, arg ListTimelineEventsParams) ([]TimelineEvent, error)
	CountTimelineEvents(ctx context.Context, eventType string) (int64, error)
	GetTimelineEvent(ctx context.Context, id int64) (TimelineEvent, error)
	CreateTimelineEvent(ctx context.Context, arg CreateTimelineEventParams) (TimelineEvent, error)
	UpdateTimelineEvent(ctx context.Context, arg UpdateTimelineEventParams) (TimelineEvent, error)
	DeleteTimelineEvent(ctx context.Context, id int64) error

	// Messages
	ListMessages(ctx context.Context, arg ListMessagesParams) ([]Message, error)
	CountMessages(ctx context.Context, filter MessageFilter) (int64, error)
	GetMessage(ctx context.Context, id int64) (Message, error)
	CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error)
	UpdateMessage(ctx context.Context, arg UpdateMessageParams) (Message, error)
	DeleteMessage(ctx context.Context, id int64) error

	// Site config
	ListSiteConfig(ctx context.Context) ([]SiteConfig, error)
	GetSiteConfig(ctx context.Context, key string) (SiteConfig, error)
	UpsertSiteConfig(ctx context.Context, key string, value json.RawMessage) (SiteConfig, error)
	DeleteSiteConfig(ctx context.Context, key string) error

	// Key-value collections
	ListKV(ctx context.Context, namespace string) ([]KVEntry, error)
	GetKV(ctx context.Context, namespace, key string) (KVEntry, error)
	PutKV(ctx context.Context, namespace, key string, value json.RawMessage) (KVEntry, error)
	DeleteKV(ctx context.Context, namespace, key string) error

	// Event log
	CreateEvent(ctx context.Context, arg CreateEventParams) error
	DeleteEventsBefore(ctx context.Context, before time.Time) (int64, error)
}

var _ Querier = (*Queries)(nil)

// Store is a Querier that can also run a function inside a transaction.
type Store interface {
	Querier
	// ExecTx runs fn in a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	ExecTx(ctx context.Context, fn func(Querier) error) error
	// Ping checks the database connection.
	Ping(ctx context.Context) error
}

// SQLStore implements Store on a *sql.DB.
type SQLStore struct {
	*Queries
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// NewStore wraps db in a SQLStore.
func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{Queries: New(db), db: db}
}

// ExecTx runs fn in a transaction.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(s.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// scannable is satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// mapError converts driver errors into package errors.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}

// requireAffected turns a zero-row result into sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// encodeList serialises a string list as JSON text, never null.
func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

// nullList encodes items for a COALESCE update; nil keeps the stored value.
func nullList(items []string) sql.NullString {
	if items == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeList(items), Valid: true}
}

// decodeList parses JSON array text, tolerating empty input.
func decodeList(data []byte) ([]string, error) {
	items := []string{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}
