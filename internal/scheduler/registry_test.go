// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/ocms-localazy/internal/source"
	"github.com/olegiv/ocms-localazy/internal/store"
	"github.com/olegiv/ocms-localazy/internal/testutil"
)

// testRegistry creates a registry persisting overrides in a test store.
func testRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	s := testutil.TestStore(t)
	r := NewRegistry(s, time.Hour, testutil.TestLoggerSilent())
	t.Cleanup(r.stop)
	return r, s
}

func mustAdd(t *testing.T, r *Registry, job Job) {
	t.Helper()
	if job.Run == nil {
		job.Run = func() {}
	}
	if err := r.Add(job); err != nil {
		t.Fatalf("Add(%s:%s): %v", job.Source, job.Name, err)
	}
}

func onlyJob(t *testing.T, r *Registry) JobInfo {
	t.Helper()
	jobs := r.List()
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	return jobs[0]
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(testutil.TestStore(t), 0, testutil.TestLoggerSilent())

	if r.triggerInterval != DefaultTriggerInterval {
		t.Errorf("triggerInterval = %v, want %v", r.triggerInterval, DefaultTriggerInterval)
	}
	if r.Len() != 0 {
		t.Error("new registry should have no jobs")
	}
}

func TestAdd_DefaultSchedule(t *testing.T) {
	r, _ := testRegistry(t)
	mustAdd(t, r, Job{Source: SourceCore, Name: "cleanup", Description: "Cleanup", DefaultSchedule: "@daily"})

	job := onlyJob(t, r)
	if job.Schedule != "@daily" || job.DefaultSchedule != "@daily" {
		t.Errorf("Schedule = %q, DefaultSchedule = %q, want @daily", job.Schedule, job.DefaultSchedule)
	}
	if job.IsOverridden {
		t.Error("IsOverridden = true, want false")
	}
	if job.CanTrigger {
		t.Error("CanTrigger = true for a job without a trigger")
	}
	if job.Description != "Cleanup" {
		t.Errorf("Description = %q", job.Description)
	}
}

func TestAdd_Overrides(t *testing.T) {
	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"no override", "", "@every 1h"},
		{"valid override", "*/15 * * * *", "*/15 * * * *"},
		{"invalid override ignored", "every tuesday", "@every 1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, s := testRegistry(t)
			if tt.override != "" {
				if err := s.UpsertSchedulerOverride(context.Background(), SourceSync, JobImport, tt.override); err != nil {
					t.Fatalf("UpsertSchedulerOverride: %v", err)
				}
			}
			mustAdd(t, r, Job{Source: SourceSync, Name: JobImport, DefaultSchedule: "@every 1h"})

			if got := onlyJob(t, r).Schedule; got != tt.want {
				t.Errorf("Schedule = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdd_InvalidDefault(t *testing.T) {
	r, _ := testRegistry(t)
	if err := r.Add(Job{Source: SourceSync, Name: JobExport, DefaultSchedule: "sometimes", Run: func() {}}); err == nil {
		t.Error("Add accepted an invalid schedule")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestAdd_ReplacesJob(t *testing.T) {
	r, _ := testRegistry(t)
	mustAdd(t, r, Job{Source: SourceSync, Name: JobImport, DefaultSchedule: "@every 1h"})
	mustAdd(t, r, Job{Source: SourceSync, Name: JobImport, DefaultSchedule: "@every 2h"})

	if got := len(r.cron.Entries()); got != 1 {
		t.Errorf("cron entries = %d, want 1", got)
	}
	if got := onlyJob(t, r).Schedule; got != "@every 2h" {
		t.Errorf("Schedule = %q, want @every 2h", got)
	}
}

func TestUpdateSchedule(t *testing.T) {
	r, s := testRegistry(t)
	r.start()
	mustAdd(t, r, Job{Source: SourceSync, Name: JobExport, DefaultSchedule: "@every 1h"})

	if err := r.UpdateSchedule(SourceSync, JobExport, "0 3 * * *"); err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}

	job := onlyJob(t, r)
	if job.Schedule != "0 3 * * *" || !job.IsOverridden {
		t.Errorf("Schedule = %q, IsOverridden = %v", job.Schedule, job.IsOverridden)
	}
	if job.NextRun.Hour() != 3 {
		t.Errorf("NextRun = %v, want 03:00", job.NextRun)
	}
	if got := len(r.cron.Entries()); got != 1 {
		t.Errorf("cron entries = %d, want 1", got)
	}

	persisted, err := s.GetSchedulerOverride(context.Background(), SourceSync, JobExport)
	if err != nil {
		t.Fatalf("GetSchedulerOverride: %v", err)
	}
	if persisted != "0 3 * * *" {
		t.Errorf("persisted = %q, want %q", persisted, "0 3 * * *")
	}
}

func TestUpdateSchedule_Errors(t *testing.T) {
	r, s := testRegistry(t)
	mustAdd(t, r, Job{Source: SourceSync, Name: JobExport, DefaultSchedule: "@every 1h"})

	if err := r.UpdateSchedule(SourceSync, JobExport, "61 * * * *"); err == nil {
		t.Error("UpdateSchedule accepted an invalid expression")
	}
	if got := onlyJob(t, r).Schedule; got != "@every 1h" {
		t.Errorf("Schedule = %q after rejected update", got)
	}
	if _, err := s.GetSchedulerOverride(context.Background(), SourceSync, JobExport); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("override persisted after rejected update: %v", err)
	}

	if err := r.UpdateSchedule(SourceSync, "nope", "@hourly"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestResetSchedule(t *testing.T) {
	r, s := testRegistry(t)
	ctx := context.Background()
	if err := s.UpsertSchedulerOverride(ctx, SourceSync, JobImport, "@every 5m"); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, r, Job{Source: SourceSync, Name: JobImport, DefaultSchedule: "@every 1h"})

	if err := r.ResetSchedule(SourceSync, JobImport); err != nil {
		t.Fatalf("ResetSchedule: %v", err)
	}
	job := onlyJob(t, r)
	if job.Schedule != "@every 1h" || job.IsOverridden {
		t.Errorf("Schedule = %q, IsOverridden = %v", job.Schedule, job.IsOverridden)
	}
	if _, err := s.GetSchedulerOverride(ctx, SourceSync, JobImport); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("override still stored: %v", err)
	}

	// Resetting a job on its default is a no-op.
	if err := r.ResetSchedule(SourceSync, JobImport); err != nil {
		t.Errorf("second ResetSchedule: %v", err)
	}
	if err := r.ResetSchedule(SourceCore, "nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestTriggerNow(t *testing.T) {
	r, _ := testRegistry(t)
	triggered := 0
	mustAdd(t, r, Job{
		Source: SourceSync, Name: JobImport, DefaultSchedule: "@every 1h",
		Trigger: func() error { triggered++; return nil },
	})
	mustAdd(t, r, Job{Source: SourceCore, Name: JobEventCleanup, DefaultSchedule: "@daily"})

	if err := r.TriggerNow(SourceSync, JobImport); err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}
	if triggered != 1 {
		t.Errorf("triggered = %d, want 1", triggered)
	}

	tests := []struct {
		name        string
		source, job string
		want        error
	}{
		{"rate limited", SourceSync, JobImport, ErrTriggerRateLimited},
		{"no trigger", SourceCore, JobEventCleanup, ErrTriggerUnavailable},
		{"unknown", SourceSync, "nope", ErrJobNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.TriggerNow(tt.source, tt.job); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if triggered != 1 {
		t.Errorf("triggered = %d after rejected triggers, want 1", triggered)
	}
}

func TestList_Sorted(t *testing.T) {
	r, _ := testRegistry(t)
	mustAdd(t, r, Job{Source: SourceSync, Name: JobImport, DefaultSchedule: "@hourly"})
	mustAdd(t, r, Job{Source: SourceSync, Name: JobExport, DefaultSchedule: "@hourly"})
	mustAdd(t, r, Job{Source: SourceCore, Name: JobEventCleanup, DefaultSchedule: "@daily"})

	var got []string
	for _, j := range r.List() {
		got = append(got, jobKey(j.Source, j.Name))
	}
	want := []string{"core:event_cleanup", "sync:export", "sync:import"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		expr  string
		valid bool
	}{
		{"*/5 * * * *", true},
		{"0 3 * * 1-5", true},
		{"@daily", true},
		{"@every 90s", true},
		{"", false},
		{"* * * *", false},
		{"0 0 0 * * *", false},
		{"61 * * * *", false},
	}

	for _, tt := range tests {
		err := ValidateSchedule(tt.expr)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateSchedule(%q) = %v, want valid=%v", tt.expr, err, tt.valid)
		}
	}
}
