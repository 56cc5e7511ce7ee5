// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package throttle

import (
	"context"
	"sync"
)

// Future is the pending result of a submitted task. It settles exactly once.
type Future struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) settle(value any, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done is closed when the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task has run or ctx is done. Abandoning the wait
// does not remove the task from the queue.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
