// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package kv persists the small admin-managed collections (interests,
// plans, navigation items, section settings) as namespaced JSON values.
package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/store"
)

// Maximum size of a stored value in bytes.
const MaxValueBytes = 64 << 10

// Errors returned by Service.
var (
	ErrUnknownNamespace = errors.New("unknown namespace")
	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidValue     = errors.New("value must be valid JSON")
	ErrValueTooLarge    = fmt.Errorf("value exceeds %d bytes", MaxValueBytes)
	ErrNotFound         = errors.New("entry not found")
)

// Backend is the subset of store.Querier the service needs.
type Backend interface {
	ListKV(ctx context.Context, namespace string) ([]store.KVEntry, error)
	GetKV(ctx context.Context, namespace, key string) (store.KVEntry, error)
	PutKV(ctx context.Context, namespace, key string, value json.RawMessage) (store.KVEntry, error)
	DeleteKV(ctx context.Context, namespace, key string) error
}

// Service validates namespaces, keys and values before touching the backend.
type Service struct {
	backend Backend
}

// NewService creates a Service over backend.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// List returns every entry of a namespace, ordered by key.
func (s *Service) List(ctx context.Context, namespace string) ([]store.KVEntry, error) {
	ns, err := parseNamespace(namespace)
	if err != nil {
		return nil, err
	}
	return s.backend.ListKV(ctx, string(ns))
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, namespace, key string) (store.KVEntry, error) {
	ns, err := parseNamespace(namespace)
	if err != nil {
		return store.KVEntry{}, err
	}
	if !model.IsValidKey(key) {
		return store.KVEntry{}, ErrInvalidKey
	}
	e, err := s.backend.GetKV(ctx, string(ns), key)
	if errors.Is(err, sql.ErrNoRows) {
		return store.KVEntry{}, ErrNotFound
	}
	return e, err
}

// Set stores value under key, replacing any previous value.
func (s *Service) Set(ctx context.Context, namespace, key string, value json.RawMessage) (store.KVEntry, error) {
	ns, err := parseNamespace(namespace)
	if err != nil {
		return store.KVEntry{}, err
	}
	if !model.IsValidKey(key) {
		return store.KVEntry{}, ErrInvalidKey
	}
	if len(value) > MaxValueBytes {
		return store.KVEntry{}, ErrValueTooLarge
	}
	if len(value) == 0 || !json.Valid(value) {
		return store.KVEntry{}, ErrInvalidValue
	}
	return s.backend.PutKV(ctx, string(ns), key, value)
}

// Delete removes one entry.
func (s *Service) Delete(ctx context.Context, namespace, key string) error {
	ns, err := parseNamespace(namespace)
	if err != nil {
		return err
	}
	if !model.IsValidKey(key) {
		return ErrInvalidKey
	}
	err = s.backend.DeleteKV(ctx, string(ns), key)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func parseNamespace(namespace string) (model.Namespace, error) {
	ns, ok := model.ParseNamespace(namespace)
	if !ok {
		return "", fmt.Errorf("%w %q, must be one of: %s", ErrUnknownNamespace, namespace, model.NamespaceList())
	}
	return ns, nil
}
