// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const projectColumns = `id, slug, title_zh, title_en, description_zh, description_en, cover_image,
	tech_stack, demo_url, github_url, featured, status, sort_order, created_at, updated_at`

const projectWhere = `WHERE ($1::text = '' OR status = $1::text)
	AND ($2::boolean IS NULL OR featured = $2::boolean)`

func scanProject(row scannable) (Project, error) {
	var p Project
	var stack []byte
	err := row.Scan(
		&p.ID, &p.Slug, &p.TitleZh, &p.TitleEn, &p.DescriptionZh, &p.DescriptionEn, &p.CoverImage,
		&stack, &p.DemoURL, &p.GithubURL, &p.Featured, &p.Status, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Project{}, err
	}
	if p.TechStack, err = decodeList(stack); err != nil {
		return Project{}, err
	}
	return p, nil
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Status   string
	Featured sql.NullBool
}

// ListProjectsParams is a filtered page of projects.
type ListProjectsParams struct {
	ProjectFilter
	Limit  int32
	Offset int32
}

// ListProjects returns featured projects first, then by sort order and age.
func (q *Queries) ListProjects(ctx context.Context, arg ListProjectsParams) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects `+projectWhere+`
		ORDER BY featured DESC, sort_order ASC, created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		arg.Status, arg.Featured, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CountProjects counts projects matching filter.
func (q *Queries) CountProjects(ctx context.Context, filter ProjectFilter) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects `+projectWhere,
		filter.Status, filter.Featured).Scan(&n)
	return n, err
}

// GetProjectBySlug loads one project.
func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug)
	return scanProject(row)
}

// ProjectSlugExists reports whether slug is used by a project other than excludeID.
func (q *Queries) ProjectSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM projects WHERE slug = $1 AND id <> $2)`,
		slug, excludeID).Scan(&exists)
	return exists, err
}

// CreateProjectParams holds the fields of a new project.
type CreateProjectParams struct {
	Slug          string
	TitleZh       string
	TitleEn       string
	DescriptionZh string
	DescriptionEn string
	CoverImage    string
	TechStack     []string
	DemoURL       string
	GithubURL     string
	Featured      bool
	Status        string
	SortOrder     int32
}

// CreateProject inserts a project.
func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO projects (slug, title_zh, title_en, description_zh, description_en, cover_image,
			tech_stack, demo_url, github_url, featured, status, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12)
		RETURNING `+projectColumns,
		arg.Slug, arg.TitleZh, arg.TitleEn, arg.DescriptionZh, arg.DescriptionEn, arg.CoverImage,
		encodeList(arg.TechStack), arg.DemoURL, arg.GithubURL, arg.Featured, arg.Status, arg.SortOrder)
	p, err := scanProject(row)
	return p, mapError(err)
}

// UpdateProjectParams holds a partial project update. Invalid Null fields and
// a nil TechStack keep the stored value.
type UpdateProjectParams struct {
	ID            int64
	Slug          sql.NullString
	TitleZh       sql.NullString
	TitleEn       sql.NullString
	DescriptionZh sql.NullString
	DescriptionEn sql.NullString
	CoverImage    sql.NullString
	TechStack     []string
	DemoURL       sql.NullString
	GithubURL     sql.NullString
	Featured      sql.NullBool
	Status        sql.NullString
	SortOrder     sql.NullInt32
}

// UpdateProject applies a partial update and bumps updated_at.
func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE projects SET
			slug = COALESCE($2, slug),
			title_zh = COALESCE($3, title_zh),
			title_en = COALESCE($4, title_en),
			description_zh = COALESCE($5, description_zh),
			description_en = COALESCE($6, description_en),
			cover_image = COALESCE($7, cover_image),
			tech_stack = COALESCE($8::jsonb, tech_stack),
			demo_url = COALESCE($9, demo_url),
			github_url = COALESCE($10, github_url),
			featured = COALESCE($11, featured),
			status = COALESCE($12, status),
			sort_order = COALESCE($13, sort_order),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns,
		arg.ID, arg.Slug, arg.TitleZh, arg.TitleEn, arg.DescriptionZh, arg.DescriptionEn, arg.CoverImage,
		nullList(arg.TechStack), arg.DemoURL, arg.GithubURL, arg.Featured, arg.Status, arg.SortOrder)
	p, err := scanProject(row)
	return p, mapError(err)
}

// DeleteProject removes a project.
func (q *Queries) DeleteProject(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
