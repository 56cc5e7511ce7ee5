// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic synchronization and housekeeping jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/ocms-localazy/internal/syncer"
)

// Job sources and names.
const (
	SourceSync = "sync"
	SourceCore = "core"

	JobImport       = "import"
	JobExport       = "export"
	JobEventCleanup = "event_cleanup"
)

// ErrJobRunning is returned when a job is triggered while it runs.
var ErrJobRunning = errors.New("job is already running")

// Syncer is the synchronization surface driven by the scheduler.
type Syncer interface {
	Import(ctx context.Context) (*syncer.Report, error)
	ExportAll(ctx context.Context) (*syncer.Report, error)
}

// EventPruner removes old event log entries.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, t time.Time) (int64, error)
}

// Config holds the job schedules.
type Config struct {
	ImportSchedule  string        // empty disables the job
	ExportSchedule  string        // empty disables the job
	CleanupSchedule string        // default "@daily"
	EventRetention  time.Duration // default 30 days
	RunTimeout      time.Duration // default 30 minutes
}

// Scheduler runs sync jobs on cron schedules.
type Scheduler struct {
	cfg      Config
	registry *Registry
	syncer   Syncer
	events   EventPruner
	logger   *slog.Logger

	mu      sync.Mutex
	running map[string]bool
	wg      sync.WaitGroup
}

// New creates a new scheduler instance. events may be nil.
func New(cfg Config, registry *Registry, s Syncer, events EventPruner, logger *slog.Logger) *Scheduler {
	if cfg.CleanupSchedule == "" {
		cfg.CleanupSchedule = "@daily"
	}
	if cfg.EventRetention <= 0 {
		cfg.EventRetention = 30 * 24 * time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	return &Scheduler{
		cfg:      cfg,
		registry: registry,
		syncer:   s,
		events:   events,
		logger:   logger,
		running:  make(map[string]bool),
	}
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Start registers the configured jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.cfg.ImportSchedule != "" {
		if err := s.add(SourceSync, JobImport, "Import translations from Localazy", s.cfg.ImportSchedule, s.runImport); err != nil {
			return err
		}
	}
	if s.cfg.ExportSchedule != "" {
		if err := s.add(SourceSync, JobExport, "Export content to Localazy", s.cfg.ExportSchedule, s.runExport); err != nil {
			return err
		}
	}
	if s.events != nil {
		if err := s.add(SourceCore, JobEventCleanup, "Delete old sync events", s.cfg.CleanupSchedule, s.cleanupEvents); err != nil {
			return err
		}
	}

	s.registry.start()
	s.logger.Info("scheduler started", "jobs", s.registry.Len())
	return nil
}

// Stop stops the cron loop and waits for scheduled and triggered runs.
func (s *Scheduler) Stop() {
	s.registry.stop()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) add(source, name, description, defaultSchedule string, fn func(context.Context) error) error {
	return s.registry.Add(Job{
		Source:          source,
		Name:            name,
		Description:     description,
		DefaultSchedule: defaultSchedule,
		Run: func() {
			if err := s.run(name, fn); err != nil && !errors.Is(err, ErrJobRunning) {
				s.logger.Error("scheduled job failed", "category", "system", "job", name, "error", err)
			}
		},
		Trigger: func() error { return s.runAsync(name, fn) },
	})
}

// run executes fn unless a run of the same job is in progress.
func (s *Scheduler) run(name string, fn func(context.Context) error) error {
	if !s.acquire(name) {
		return ErrJobRunning
	}
	defer s.release(name)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()
	return fn(ctx)
}

// runAsync starts fn in the background for a manual trigger.
func (s *Scheduler) runAsync(name string, fn func(context.Context) error) error {
	if !s.acquire(name) {
		return ErrJobRunning
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(name)

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Error("triggered job failed", "category", "system", "job", name, "error", err)
		}
	}()
	return nil
}

func (s *Scheduler) acquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	delete(s.running, name)
	s.mu.Unlock()
}

func (s *Scheduler) runImport(ctx context.Context) error {
	r, err := s.syncer.Import(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("scheduled import finished", "category", "import", "status", r.Status, "run_id", r.RunID)
	return nil
}

func (s *Scheduler) runExport(ctx context.Context) error {
	r, err := s.syncer.ExportAll(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("scheduled export finished", "category", "export", "status", r.Status, "run_id", r.RunID)
	return nil
}

func (s *Scheduler) cleanupEvents(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.EventRetention)
	n, err := s.events.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("deleting events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if n > 0 {
		s.logger.Info("deleted old sync events", "category", "system", "count", n)
	}
	return nil
}
