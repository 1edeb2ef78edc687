// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const articleColumns = `id, slug, title_zh, title_en, content_zh, content_en, excerpt_zh, excerpt_en,
	cover_image, category, tags, status, author, view_count, published_at, created_at, updated_at`

// articleWhere filters on status, category and tag; empty values match everything.
const articleWhere = `WHERE ($1::text = '' OR status = $1::text)
	AND ($2::text = '' OR category = $2::text)
	AND ($3::text = '' OR tags ? $3::text)`

func scanArticle(row scannable) (Article, error) {
	var a Article
	var tags []byte
	var publishedAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.Slug, &a.TitleZh, &a.TitleEn, &a.ContentZh, &a.ContentEn,
		&a.ExcerptZh, &a.ExcerptEn, &a.CoverImage, &a.Category, &tags,
		&a.Status, &a.Author, &a.ViewCount, &publishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Article{}, err
	}
	if a.Tags, err = decodeList(tags); err != nil {
		return Article{}, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}
	return a, nil
}

// ArticleFilter narrows article listings. Empty fields are ignored.
type ArticleFilter struct {
	Status   string
	Category string
	Tag      string
}

// ListArticlesParams is a filtered page of articles.
type ListArticlesParams struct {
	ArticleFilter
	Limit  int32
	Offset int32
}

// ListArticles returns articles newest first.
func (q *Queries) ListArticles(ctx context.Context, arg ListArticlesParams) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles `+articleWhere+`
		ORDER BY COALESCE(published_at, created_at) DESC, id DESC
		LIMIT $4 OFFSET $5`,
		arg.Status, arg.Category, arg.Tag, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// CountArticles counts articles matching filter.
func (q *Queries) CountArticles(ctx context.Context, filter ArticleFilter) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles `+articleWhere,
		filter.Status, filter.Category, filter.Tag).Scan(&n)
	return n, err
}

// GetArticleBySlug loads one article regardless of status.
func (q *Queries) GetArticleBySlug(ctx context.Context, slug string) (Article, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug)
	return scanArticle(row)
}

// ArticleSlugExists reports whether slug is used by an article other than excludeID.
func (q *Queries) ArticleSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)`,
		slug, excludeID).Scan(&exists)
	return exists, err
}

// CreateArticleParams holds the fields of a new article.
type CreateArticleParams struct {
	Slug       string
	TitleZh    string
	TitleEn    string
	ContentZh  string
	ContentEn  string
	ExcerptZh  string
	ExcerptEn  string
	CoverImage string
	Category   string
	Tags       []string
	Status     string
	Author     string
}

// CreateArticle inserts an article. published_at is set when it is created published.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO articles (slug, title_zh, title_en, content_zh, content_en, excerpt_zh, excerpt_en,
			cover_image, category, tags, status, author, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::text, $12,
			CASE WHEN $11::text = 'published' THEN NOW() END)
		RETURNING `+articleColumns,
		arg.Slug, arg.TitleZh, arg.TitleEn, arg.ContentZh, arg.ContentEn, arg.ExcerptZh, arg.ExcerptEn,
		arg.CoverImage, arg.Category, encodeList(arg.Tags), arg.Status, arg.Author)
	a, err := scanArticle(row)
	return a, mapError(err)
}

// UpdateArticleParams holds a partial article update. Invalid Null fields and
// a nil Tags slice keep the stored value.
type UpdateArticleParams struct {
	ID         int64
	Slug       sql.NullString
	TitleZh    sql.NullString
	TitleEn    sql.NullString
	ContentZh  sql.NullString
	ContentEn  sql.NullString
	ExcerptZh  sql.NullString
	ExcerptEn  sql.NullString
	CoverImage sql.NullString
	Category   sql.NullString
	Tags       []string
	Status     sql.NullString
	Author     sql.NullString
}

// UpdateArticle applies a partial update and bumps updated_at. published_at
// is set the first time the article becomes published.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE articles SET
			slug = COALESCE($2, slug),
			title_zh = COALESCE($3, title_zh),
			title_en = COALESCE($4, title_en),
			content_zh = COALESCE($5, content_zh),
			content_en = COALESCE($6, content_en),
			excerpt_zh = COALESCE($7, excerpt_zh),
			excerpt_en = COALESCE($8, excerpt_en),
			cover_image = COALESCE($9, cover_image),
			category = COALESCE($10, category),
			tags = COALESCE($11::jsonb, tags),
			status = COALESCE($12::text, status),
			author = COALESCE($13, author),
			published_at = CASE WHEN COALESCE($12::text, status) = 'published'
				THEN COALESCE(published_at, NOW()) ELSE published_at END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+articleColumns,
		arg.ID, arg.Slug, arg.TitleZh, arg.TitleEn, arg.ContentZh, arg.ContentEn, arg.ExcerptZh,
		arg.ExcerptEn, arg.CoverImage, arg.Category, nullList(arg.Tags), arg.Status, arg.Author)
	a, err := scanArticle(row)
	return a, mapError(err)
}

// DeleteArticle removes an article.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// IncrementArticleViews adds one view and returns the new count.
func (q *Queries) IncrementArticleViews(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`UPDATE articles SET view_count = view_count + 1 WHERE slug = $1 RETURNING view_count`,
		slug).Scan(&n)
	return n, err
}
