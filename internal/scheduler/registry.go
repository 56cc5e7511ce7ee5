// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

// DefaultTriggerInterval is the minimum time between manual runs of a job.
const DefaultTriggerInterval = 10 * time.Second

// storeTimeout bounds override reads and writes.
const storeTimeout = 5 * time.Second

var (
	// ErrJobNotFound is returned for unknown jobs.
	ErrJobNotFound = errors.New("job not found")
	// ErrTriggerUnavailable is returned for jobs without a manual trigger.
	ErrTriggerUnavailable = errors.New("manual trigger not available")
	// ErrTriggerRateLimited is returned when a job was triggered too recently.
	ErrTriggerRateLimited = errors.New("manual trigger rate limited")
)

// OverrideStore persists schedule overrides.
type OverrideStore interface {
	GetSchedulerOverride(ctx context.Context, source, name string) (string, error)
	UpsertSchedulerOverride(ctx context.Context, source, name, schedule string) error
	DeleteSchedulerOverride(ctx context.Context, source, name string) error
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule reports whether expr is a valid cron expression.
func ValidateSchedule(expr string) error {
	_, err := parseSchedule(expr)
	return err
}

func parseSchedule(expr string) (cron.Schedule, error) {
	s, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return s, nil
}

// Job describes a scheduled job.
type Job struct {
	Source          string
	Name            string
	Description     string
	DefaultSchedule string
	Run             func()       // called by cron
	Trigger         func() error // nil disables manual triggering
}

type entry struct {
	Job
	schedule string // effective schedule
	id       cron.EntryID
	limiter  *rate.Limiter
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Source          string    `json:"source"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultSchedule string    `json:"default_schedule"`
	Schedule        string    `json:"schedule"`
	IsOverridden    bool      `json:"is_overridden"`
	LastRun         time.Time `json:"last_run"`
	NextRun         time.Time `json:"next_run"`
	CanTrigger      bool      `json:"can_trigger"`
}

// Registry owns the cron loop and the jobs scheduled on it. Schedule
// changes are persisted as overrides and survive restarts.
type Registry struct {
	cron            *cron.Cron
	overrides       OverrideStore
	triggerInterval time.Duration
	logger          *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*entry // key: "source:name"
}

// NewRegistry creates a registry. A non-positive triggerInterval selects
// DefaultTriggerInterval.
func NewRegistry(overrides OverrideStore, triggerInterval time.Duration, logger *slog.Logger) *Registry {
	if triggerInterval <= 0 {
		triggerInterval = DefaultTriggerInterval
	}
	return &Registry{
		cron:            cron.New(cron.WithParser(cronParser)),
		overrides:       overrides,
		triggerInterval: triggerInterval,
		logger:          logger,
		jobs:            make(map[string]*entry),
	}
}

func jobKey(source, name string) string {
	return source + ":" + name
}

// Add schedules job with its persisted override, or its default schedule
// when there is none. An override that no longer parses is ignored.
func (r *Registry) Add(job Job) error {
	def, err := parseSchedule(job.DefaultSchedule)
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", jobKey(job.Source, job.Name), err)
	}
	schedule, sched := job.DefaultSchedule, def
	if override := r.override(job.Source, job.Name); override != "" {
		if s, err := parseSchedule(override); err == nil {
			schedule, sched = override, s
		} else {
			r.logger.Warn("ignoring invalid schedule override", "category", "system",
				"job", jobKey(job.Source, job.Name), "error", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := jobKey(job.Source, job.Name)
	if old, ok := r.jobs[key]; ok {
		r.cron.Remove(old.id)
	}
	r.jobs[key] = &entry{
		Job:      job,
		schedule: schedule,
		id:       r.cron.Schedule(sched, cron.FuncJob(job.Run)),
		limiter:  rate.NewLimiter(rate.Every(r.triggerInterval), 1),
	}
	r.logger.Debug("registered scheduled job", "job", key, "schedule", schedule)
	return nil
}

func (r *Registry) override(source, name string) string {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	s, err := r.overrides.GetSchedulerOverride(ctx, source, name)
	if err != nil {
		return ""
	}
	return s
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

func (r *Registry) start() { r.cron.Start() }

// stop halts the cron loop and waits for running cron callbacks.
func (r *Registry) stop() { <-r.cron.Stop().Done() }

// List returns all registered jobs sorted by source then name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]JobInfo, 0, len(r.jobs))
	for _, e := range r.jobs {
		ce := r.cron.Entry(e.id)
		out = append(out, JobInfo{
			Source:          e.Source,
			Name:            e.Name,
			Description:     e.Description,
			DefaultSchedule: e.DefaultSchedule,
			Schedule:        e.schedule,
			IsOverridden:    e.schedule != e.DefaultSchedule,
			LastRun:         ce.Prev,
			NextRun:         ce.Next,
			CanTrigger:      e.Trigger != nil,
		})
	}
	slices.SortFunc(out, func(a, b JobInfo) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Name, b.Name))
	})
	return out
}

func (r *Registry) lookup(source, name string) (*entry, error) {
	e, ok := r.jobs[jobKey(source, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobKey(source, name))
	}
	return e, nil
}

// TriggerNow runs a job outside its schedule. Each job accepts one manual
// trigger per trigger interval.
func (r *Registry) TriggerNow(source, name string) error {
	r.mu.RLock()
	e, err := r.lookup(source, name)
	r.mu.RUnlock()
	if err != nil {
		return err
	}
	if e.Trigger == nil {
		return fmt.Errorf("%w: %s", ErrTriggerUnavailable, jobKey(source, name))
	}
	if !e.limiter.Allow() {
		return fmt.Errorf("%w: %s, retry in %s", ErrTriggerRateLimited, jobKey(source, name), r.triggerInterval)
	}

	r.logger.Info("manually triggering job", "job", jobKey(source, name))
	return e.Trigger()
}

// UpdateSchedule replaces the schedule of a job and persists it.
func (r *Registry) UpdateSchedule(source, name, schedule string) error {
	sched, err := parseSchedule(schedule)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(source, name)
	if err != nil {
		return err
	}
	r.reschedule(e, schedule, sched)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.overrides.UpsertSchedulerOverride(ctx, source, name, schedule); err != nil {
		r.logger.Error("failed to persist schedule override", "category", "system", "job", jobKey(source, name), "error", err)
	}
	r.logger.Info("updated job schedule", "job", jobKey(source, name), "schedule", schedule)
	return nil
}

// ResetSchedule drops the override of a job and restores its default.
func (r *Registry) ResetSchedule(source, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(source, name)
	if err != nil {
		return err
	}
	if e.schedule != e.DefaultSchedule {
		sched, err := parseSchedule(e.DefaultSchedule)
		if err != nil {
			return err
		}
		r.reschedule(e, e.DefaultSchedule, sched)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.overrides.DeleteSchedulerOverride(ctx, source, name); err != nil {
		r.logger.Error("failed to remove schedule override", "category", "system", "job", jobKey(source, name), "error", err)
	}
	r.logger.Info("reset job schedule", "job", jobKey(source, name), "schedule", e.DefaultSchedule)
	return nil
}

// reschedule swaps the cron entry of e. Callers hold mu.
func (r *Registry) reschedule(e *entry, expr string, sched cron.Schedule) {
	r.cron.Remove(e.id)
	e.id = r.cron.Schedule(sched, cron.FuncJob(e.Run))
	e.schedule = expr
}
