// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package throttle serializes calls to the Localazy API under a
// per-second and a per-minute request cap.
//
// Requests are executed one at a time in submission order by a single
// drain goroutine. Both caps are fixed windows: a window's counter resets
// wholesale once the window has lasted its full duration, and the next
// window opens with the first request admitted after the reset.
package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Clock abstracts time for the drain loop.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Config holds throttler configuration.
type Config struct {
	PerSecond int           // Maximum requests per second window
	PerMinute int           // Maximum requests per minute window
	Quantum   time.Duration // Sleep between drain iterations
	Clock     Clock         // nil uses the wall clock
}

// DefaultConfig returns the limits the Localazy API tolerates.
func DefaultConfig() Config {
	return Config{
		PerSecond: 10,
		PerMinute: 100,
		Quantum:   50 * time.Millisecond,
	}
}

// Task is a deferred call to the remote API.
type Task func(ctx context.Context) (any, error)

type request struct {
	ctx      context.Context
	task     Task
	future   *Future
	enqueued time.Time
}

type window struct {
	length time.Duration
	limit  int
	count  int
	start  time.Time
	open   bool
}

func (w *window) roll(now time.Time) {
	if w.open && now.Sub(w.start) >= w.length {
		w.count = 0
		w.open = false
	}
}

func (w *window) full() bool {
	return w.count >= w.limit
}

func (w *window) admit(now time.Time) {
	if !w.open {
		w.start = now
		w.open = true
	}
	w.count++
}

// Throttler admits queued tasks under two fixed-window rate caps.
type Throttler struct {
	cfg    Config
	clock  Clock
	logger *slog.Logger

	mu       sync.Mutex
	pending  []*request
	draining bool

	// Owned by the active drain goroutine.
	second window
	minute window

	statsMu sync.Mutex
	stats   Stats
}

// Stats reports throttler activity.
type Stats struct {
	Pending   int   `json:"pending"`
	Executed  int64 `json:"executed"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
}

// New creates a Throttler.
func New(cfg Config, logger *slog.Logger) *Throttler {
	def := DefaultConfig()
	if cfg.PerSecond <= 0 {
		cfg.PerSecond = def.PerSecond
	}
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = def.PerMinute
	}
	if cfg.Quantum <= 0 {
		cfg.Quantum = def.Quantum
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Throttler{
		cfg:    cfg,
		clock:  clock,
		logger: logger,
		second: window{length: time.Second, limit: cfg.PerSecond},
		minute: window{length: time.Minute, limit: cfg.PerMinute},
	}
}

// Submit enqueues task and returns the future that settles once it has run.
// ctx is handed to the task; a task whose ctx is done before admission is
// settled with the context error without calling the API.
func (t *Throttler) Submit(ctx context.Context, task Task) *Future {
	f := newFuture()
	req := &request{ctx: ctx, task: task, future: f, enqueued: t.clock.Now()}

	t.mu.Lock()
	t.pending = append(t.pending, req)
	depth := len(t.pending)
	start := !t.draining
	t.draining = true
	t.mu.Unlock()

	queueDepth.Set(float64(depth))
	if start {
		go t.drain()
	}
	return f
}

// Stats returns a snapshot of throttler counters.
func (t *Throttler) Stats() Stats {
	t.mu.Lock()
	pending := len(t.pending)
	t.mu.Unlock()

	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	s := t.stats
	s.Pending = pending
	return s
}

func (t *Throttler) drain() {
	for {
		t.clock.Sleep(t.cfg.Quantum)

		t.mu.Lock()
		if len(t.pending) == 0 {
			t.draining = false
			t.mu.Unlock()
			return
		}
		head := t.pending[0]
		t.mu.Unlock()

		now := t.clock.Now()
		t.second.roll(now)
		t.minute.roll(now)

		if err := head.ctx.Err(); err != nil {
			t.pop()
			t.record(resultCancelled)
			head.future.settle(nil, err)
			continue
		}

		if t.second.full() || t.minute.full() {
			backoffs.Inc()
			continue
		}

		t.second.admit(now)
		t.minute.admit(now)
		t.pop()
		waitSeconds.Observe(now.Sub(head.enqueued).Seconds())

		value, err := t.run(head)
		if err != nil {
			t.record(resultError)
			t.logger.Debug("throttled request failed", "category", "throttle", "error", err)
		} else {
			t.record(resultOK)
		}
		head.future.settle(value, err)
	}
}

func (t *Throttler) pop() {
	t.mu.Lock()
	t.pending[0] = nil
	t.pending = t.pending[1:]
	depth := len(t.pending)
	t.mu.Unlock()
	queueDepth.Set(float64(depth))
}

func (t *Throttler) run(req *request) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("throttled task panicked: %v", r)
		}
	}()
	return req.task(req.ctx)
}

func (t *Throttler) record(result string) {
	requestsTotal.WithLabelValues(result).Inc()

	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	switch result {
	case resultOK:
		t.stats.Executed++
	case resultError:
		t.stats.Executed++
		t.stats.Failed++
	case resultCancelled:
		t.stats.Cancelled++
	}
}

// Do submits fn and waits for its typed result.
func Do[T any](ctx context.Context, t *Throttler, fn func(ctx context.Context) (T, error)) (T, error) {
	f := t.Submit(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	v, err := f.Wait(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	res, _ := v.(T)
	return res, nil
}
