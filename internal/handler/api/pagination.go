// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// maxPage keeps offsets within int32.
	maxPage = 1_000_000
)

// Pagination describes the page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ListResponse is the body of every list endpoint.
type ListResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// pageRequest is the page and limit requested by the caller.
type pageRequest struct {
	Page  int
	Limit int
}

// parsePageRequest reads page and limit query parameters. Missing or
// invalid values fall back to defaults; limit is capped at MaxLimit.
func parsePageRequest(r *http.Request) pageRequest {
	pr := pageRequest{Page: DefaultPage, Limit: DefaultLimit}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		pr.Page = min(p, maxPage)
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		pr.Limit = min(l, MaxLimit)
	}
	return pr
}

// Offset returns the number of rows to skip.
func (pr pageRequest) Offset() int32 {
	return int32((pr.Page - 1) * pr.Limit)
}

// Limit32 returns the limit as the store expects it.
func (pr pageRequest) Limit32() int32 {
	return int32(pr.Limit)
}

// newPagination builds the pagination block for total rows.
func newPagination(pr pageRequest, total int64) Pagination {
	totalPages := int((total + int64(pr.Limit) - 1) / int64(pr.Limit))
	return Pagination{
		Page:       pr.Page,
		Limit:      pr.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// writeList writes a 200 list response. A nil slice is sent as [].
func writeList[T any](w http.ResponseWriter, items []T, pr pageRequest, total int64) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, ListResponse{Data: items, Pagination: newPagination(pr, total)})
}

// ListAndCount fetches a page of items together with the total count.
func ListAndCount[T any](list func() ([]T, error), count func() (int64, error)) ([]T, int64, error) {
	items, err := list()
	if err != nil {
		return nil, 0, err
	}
	total, err := count()
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
