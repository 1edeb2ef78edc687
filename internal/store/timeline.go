// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const timelineColumns = `id, title_zh, title_en, description_zh, description_en,
	to_char(event_date, 'YYYY-MM-DD'), type, sort_order, created_at, updated_at`

func scanTimelineEvent(row scannable) (TimelineEvent, error) {
	var e TimelineEvent
	err := row.Scan(
		&e.ID, &e.TitleZh, &e.TitleEn, &e.DescriptionZh, &e.DescriptionEn,
		&e.Date, &e.Type, &e.SortOrder, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// ListTimelineEventsParams is a page of events, optionally of one type.
type ListTimelineEventsParams struct {
	Type   string
	Limit  int32
	Offset int32
}

// ListTimelineEvents returns events newest first.
func (q *Queries) ListTimelineEvents(ctx context.Context, arg ListTimelineEventsParams) ([]TimelineEvent, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+timelineColumns+` FROM timeline_events
		WHERE ($1::text = '' OR type = $1::text)
		ORDER BY event_date DESC, sort_order ASC, id DESC
		LIMIT $2 OFFSET $3`,
		arg.Type, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []TimelineEvent{}
	for rows.Next() {
		e, err := scanTimelineEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// CountTimelineEvents counts events, optionally of one type.
func (q *Queries) CountTimelineEvents(ctx context.Context, eventType string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM timeline_events WHERE ($1::text = '' OR type = $1::text)`,
		eventType).Scan(&n)
	return n, err
}

// GetTimelineEvent loads one event.
func (q *Queries) GetTimelineEvent(ctx context.Context, id int64) (TimelineEvent, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+timelineColumns+` FROM timeline_events WHERE id = $1`, id)
	return scanTimelineEvent(row)
}

// CreateTimelineEventParams holds the fields of a new event. Date is YYYY-MM-DD.
type CreateTimelineEventParams struct {
	TitleZh       string
	TitleEn       string
	DescriptionZh string
	DescriptionEn string
	Date          string
	Type          string
	SortOrder     int32
}

// CreateTimelineEvent inserts an event.
func (q *Queries) CreateTimelineEvent(ctx context.Context, arg CreateTimelineEventParams) (TimelineEvent, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO timeline_events (title_zh, title_en, description_zh, description_en, event_date, type, sort_order)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7)
		RETURNING `+timelineColumns,
		arg.TitleZh, arg.TitleEn, arg.DescriptionZh, arg.DescriptionEn, arg.Date, arg.Type, arg.SortOrder)
	return scanTimelineEvent(row)
}

// UpdateTimelineEventParams holds a partial event update.
type UpdateTimelineEventParams struct {
	ID            int64
	TitleZh       sql.NullString
	TitleEn       sql.NullString
	DescriptionZh sql.NullString
	DescriptionEn sql.NullString
	Date          sql.NullString
	Type          sql.NullString
	SortOrder     sql.NullInt32
}

// UpdateTimelineEvent applies a partial update and bumps updated_at.
func (q *Queries) UpdateTimelineEvent(ctx context.Context, arg UpdateTimelineEventParams) (TimelineEvent, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE timeline_events SET
			title_zh = COALESCE($2, title_zh),
			title_en = COALESCE($3, title_en),
			description_zh = COALESCE($4, description_zh),
			description_en = COALESCE($5, description_en),
			event_date = COALESCE($6::date, event_date),
			type = COALESCE($7, type),
			sort_order = COALESCE($8, sort_order),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+timelineColumns,
		arg.ID, arg.TitleZh, arg.TitleEn, arg.DescriptionZh, arg.DescriptionEn, arg.Date, arg.Type, arg.SortOrder)
	return scanTimelineEvent(row)
}

// DeleteTimelineEvent removes an event.
func (q *Queries) DeleteTimelineEvent(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM timeline_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
