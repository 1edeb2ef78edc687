// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/folio/internal/model"
)

// DefaultCleanupSchedule runs the event log cleanup daily at 03:00.
const DefaultCleanupSchedule = "0 3 * * *"

// jobTimeout bounds a single run of a maintenance job.
const jobTimeout = time.Minute

// EventPruner deletes old event log records.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, before time.Time) (int64, error)
}

// Config controls the maintenance jobs.
type Config struct {
	// CleanupSchedule is a standard five-field cron expression.
	CleanupSchedule string
	// EventRetention is how long event log records are kept. Zero or less
	// disables the cleanup job.
	EventRetention time.Duration
}

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	cron   *cron.Cron
	events EventPruner
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a scheduler. Jobs are registered by Start.
func New(events EventPruner, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.CleanupSchedule == "" {
		cfg.CleanupSchedule = DefaultCleanupSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(),
		events: events,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.cfg.EventRetention > 0 {
		_, err := s.cron.AddFunc(s.cfg.CleanupSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if _, err := s.PruneEvents(ctx); err != nil {
				s.logger.Error("failed to clean up event log", "category", model.EventCategorySystem, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("registering event log cleanup: %w", err)
		}
		s.logger.Info("event log cleanup job registered",
			"schedule", s.cfg.CleanupSchedule,
			"retention", s.cfg.EventRetention.String(),
		)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// PruneEvents deletes event log records older than the retention period.
func (s *Scheduler) PruneEvents(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.EventRetention)
	n, err := s.events.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	s.logger.Info("cleaned up event log", "deleted", n, "older_than", cutoff.Format(model.DateLayout))
	return n, nil
}
