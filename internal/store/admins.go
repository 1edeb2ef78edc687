// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const adminColumns = `id, username, password_hash, last_login_at, created_at, updated_at`

func scanAdmin(row scannable) (Admin, error) {
	var a Admin
	var lastLogin sql.NullTime
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &lastLogin, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Admin{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}
	return a, nil
}

// GetAdminByUsername loads an admin account.
func (q *Queries) GetAdminByUsername(ctx context.Context, username string) (Admin, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE username = $1`, username)
	return scanAdmin(row)
}

// AdminExists reports whether username names an admin account.
func (q *Queries) AdminExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// CountAdmins returns the number of admin accounts.
func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, err
}

// CreateAdminParams holds the fields of a new admin.
type CreateAdminParams struct {
	Username     string
	PasswordHash string
}

// CreateAdmin inserts an admin account.
func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (Admin, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO admins (username, password_hash) VALUES ($1, $2) RETURNING `+adminColumns,
		arg.Username, arg.PasswordHash)
	a, err := scanAdmin(row)
	return a, mapError(err)
}

// UpdateAdminPasswordParams identifies the admin and the new hash.
type UpdateAdminPasswordParams struct {
	ID           int64
	PasswordHash string
}

// UpdateAdminPassword replaces an admin's password hash.
func (q *Queries) UpdateAdminPassword(ctx context.Context, arg UpdateAdminPasswordParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE admins SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		arg.ID, arg.PasswordHash)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// TouchAdminLogin records a successful login.
func (q *Queries) TouchAdminLogin(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `UPDATE admins SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
