// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package batch runs a growing list of jobs with a pause between job starts.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Job is a unit of work returning a value of type T.
type Job[T any] func(ctx context.Context) (T, error)

// Result is the settled outcome of a job.
type Result[T any] struct {
	Data T
	Err  error
}

// Options controls Execute.
type Options struct {
	// DelayBetween is the pause between consecutive job starts.
	DelayBetween time.Duration
	// Concurrency bounds the jobs in flight; values below 1 mean one.
	Concurrency int
}

// Queue collects jobs and executes them in order. Jobs may be added while
// Execute runs; they are executed before it returns.
type Queue[T any] struct {
	mu   sync.Mutex
	jobs []Job[T]
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Add appends jobs to the queue.
func (q *Queue[T]) Add(jobs ...Job[T]) {
	q.mu.Lock()
	q.jobs = append(q.jobs, jobs...)
	q.mu.Unlock()
}

// Len returns the number of jobs added so far.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue[T]) job(i int) (Job[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i >= len(q.jobs) {
		return nil, false
	}
	return q.jobs[i], true
}

// Execute runs every job and returns their results in the order the jobs
// were added. A failing job does not stop the others. Once ctx is done no
// further jobs are started and the remaining ones report ctx.Err().
func (q *Queue[T]) Execute(ctx context.Context, opts Options) []Result[T] {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		results []Result[T]
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, concurrency)

	store := func(i int, r Result[T]) {
		mu.Lock()
		defer mu.Unlock()
		for len(results) <= i {
			results = append(results, Result[T]{})
		}
		results[i] = r
	}

	for i := 0; ; i++ {
		job, ok := q.job(i)
		if !ok {
			// Jobs running now may still add more.
			wg.Wait()
			if job, ok = q.job(i); !ok {
				break
			}
		}

		if i > 0 && opts.DelayBetween > 0 && ctx.Err() == nil {
			timer := time.NewTimer(opts.DelayBetween)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
			}
		}

		if err := ctx.Err(); err != nil {
			store(i, Result[T]{Err: err})
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, job Job[T]) {
			defer wg.Done()
			defer func() { <-sem }()
			store(i, run(ctx, job))
		}(i, job)
	}

	wg.Wait()
	return results
}

func run[T any](ctx context.Context, job Job[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Err: fmt.Errorf("batch job panicked: %v", r)}
		}
	}()
	data, err := job(ctx)
	return Result[T]{Data: data, Err: err}
}

// Errors returns the non-nil errors of results.
func Errors[T any](results []Result[T]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
