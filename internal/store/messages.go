// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const messageColumns = `id, name, email, subject, content, read, replied, created_at`

const messageWhere = `WHERE ($1::boolean IS NULL OR read = $1::boolean)
	AND ($2::boolean IS NULL OR replied = $2::boolean)`

func scanMessage(row scannable) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Content, &m.Read, &m.Replied, &m.CreatedAt)
	return m, err
}

// MessageFilter narrows message listings.
type MessageFilter struct {
	Read    sql.NullBool
	Replied sql.NullBool
}

// ListMessagesParams is a filtered page of messages.
type ListMessagesParams struct {
	MessageFilter
	Limit  int32
	Offset int32
}

// ListMessages returns messages newest first.
func (q *Queries) ListMessages(ctx context.Context, arg ListMessagesParams) ([]Message, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages `+messageWhere+`
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		arg.Read, arg.Replied, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// CountMessages counts messages matching filter.
func (q *Queries) CountMessages(ctx context.Context, filter MessageFilter) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages `+messageWhere,
		filter.Read, filter.Replied).Scan(&n)
	return n, err
}

// GetMessage loads one message.
func (q *Queries) GetMessage(ctx context.Context, id int64) (Message, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
	return scanMessage(row)
}

// CreateMessageParams holds a visitor submission.
type CreateMessageParams struct {
	Name    string
	Email   string
	Subject string
	Content string
}

// CreateMessage inserts a message.
func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO messages (name, email, subject, content) VALUES ($1, $2, $3, $4)
		RETURNING `+messageColumns,
		arg.Name, arg.Email, arg.Subject, arg.Content)
	return scanMessage(row)
}

// UpdateMessageParams sets the read and replied flags; invalid fields are kept.
type UpdateMessageParams struct {
	ID      int64
	Read    sql.NullBool
	Replied sql.NullBool
}

// UpdateMessage changes a message's flags.
func (q *Queries) UpdateMessage(ctx context.Context, arg UpdateMessageParams) (Message, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE messages SET read = COALESCE($2, read), replied = COALESCE($3, replied)
		WHERE id = $1
		RETURNING `+messageColumns,
		arg.ID, arg.Read, arg.Replied)
	return scanMessage(row)
}

// DeleteMessage removes a message.
func (q *Queries) DeleteMessage(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
