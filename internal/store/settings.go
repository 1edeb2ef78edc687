// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"time"
)

func scanSiteConfig(row scannable) (SiteConfig, error) {
	var c SiteConfig
	var value []byte
	if err := row.Scan(&c.Key, &value, &c.UpdatedAt); err != nil {
		return SiteConfig{}, err
	}
	c.Value = json.RawMessage(value)
	return c, nil
}

// ListSiteConfig returns every setting ordered by key.
func (q *Queries) ListSiteConfig(ctx context.Context) ([]SiteConfig, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT key, value, updated_at FROM site_config ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []SiteConfig{}
	for rows.Next() {
		c, err := scanSiteConfig(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// GetSiteConfig loads one setting.
func (q *Queries) GetSiteConfig(ctx context.Context, key string) (SiteConfig, error) {
	row := q.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM site_config WHERE key = $1`, key)
	return scanSiteConfig(row)
}

// UpsertSiteConfig inserts a setting or replaces its value.
func (q *Queries) UpsertSiteConfig(ctx context.Context, key string, value json.RawMessage) (SiteConfig, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO site_config (key, value, updated_at) VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at`,
		key, string(value))
	return scanSiteConfig(row)
}

// DeleteSiteConfig removes a setting.
func (q *Queries) DeleteSiteConfig(ctx context.Context, key string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM site_config WHERE key = $1`, key)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanKV(row scannable) (KVEntry, error) {
	var e KVEntry
	var value []byte
	if err := row.Scan(&e.Namespace, &e.Key, &value, &e.UpdatedAt); err != nil {
		return KVEntry{}, err
	}
	e.Value = json.RawMessage(value)
	return e, nil
}

// ListKV returns the entries of a namespace ordered by key.
func (q *Queries) ListKV(ctx context.Context, namespace string) ([]KVEntry, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT namespace, key, value, updated_at FROM kv_entries WHERE namespace = $1 ORDER BY key`,
		namespace)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []KVEntry{}
	for rows.Next() {
		e, err := scanKV(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// GetKV loads one entry.
func (q *Queries) GetKV(ctx context.Context, namespace, key string) (KVEntry, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT namespace, key, value, updated_at FROM kv_entries WHERE namespace = $1 AND key = $2`,
		namespace, key)
	return scanKV(row)
}

// PutKV inserts or replaces an entry.
func (q *Queries) PutKV(ctx context.Context, namespace, key string, value json.RawMessage) (KVEntry, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO kv_entries (namespace, key, value, updated_at) VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING namespace, key, value, updated_at`,
		namespace, key, string(value))
	return scanKV(row)
}

// DeleteKV removes an entry.
func (q *Queries) DeleteKV(ctx context.Context, namespace, key string) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`, namespace, key)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CreateEventParams is one event_log record.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	RequestID string
}

// CreateEvent appends to the event log.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	metadata := arg.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO event_log (level, category, message, metadata, request_id) VALUES ($1, $2, $3, $4::jsonb, $5)`,
		arg.Level, arg.Category, arg.Message, metadata, arg.RequestID)
	return err
}

// DeleteEventsBefore removes event log records created before the cutoff and
// returns how many were deleted.
func (q *Queries) DeleteEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM event_log WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
