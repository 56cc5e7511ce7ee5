// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localazy

import (
	"context"

	"github.com/olegiv/ocms-localazy/internal/throttle"
)

// Throttled routes every API request of a client through a shared throttler.
// Paged key listings are throttled per page when the client is a Pager.
type Throttled struct {
	next Client
	t    *throttle.Throttler
}

var _ Client = (*Throttled)(nil)

// NewThrottled wraps c.
func NewThrottled(c Client, t *throttle.Throttler) *Throttled {
	return &Throttled{next: c, t: t}
}

// ThrottledFactory wraps every client created by f with t.
func ThrottledFactory(f Factory, t *throttle.Throttler) Factory {
	return func(token string) Client {
		return NewThrottled(f(token), t)
	}
}

func (c *Throttled) ImportJSON(ctx context.Context, req ImportRequest) (ImportResult, error) {
	return throttle.Do(ctx, c.t, func(ctx context.Context) (ImportResult, error) {
		return c.next.ImportJSON(ctx, req)
	})
}

func (c *Throttled) ListFiles(ctx context.Context, project string) ([]File, error) {
	return throttle.Do(ctx, c.t, func(ctx context.Context) ([]File, error) {
		return c.next.ListFiles(ctx, project)
	})
}

func (c *Throttled) ListKeys(ctx context.Context, req KeysRequest) ([]Key, error) {
	pager, ok := c.next.(Pager)
	if !ok {
		return throttle.Do(ctx, c.t, func(ctx context.Context) ([]Key, error) {
			return c.next.ListKeys(ctx, req)
		})
	}
	return collectPages(ctx, req, func(ctx context.Context, req KeysRequest, next string) (KeysPage, error) {
		return throttle.Do(ctx, c.t, func(ctx context.Context) (KeysPage, error) {
			return pager.ListKeysPage(ctx, req, next)
		})
	})
}

func (c *Throttled) ListProjects(ctx context.Context, opts ProjectsOptions) ([]Project, error) {
	return throttle.Do(ctx, c.t, func(ctx context.Context) ([]Project, error) {
		return c.next.ListProjects(ctx, opts)
	})
}

func (c *Throttled) UpdateKey(ctx context.Context, req KeyUpdateRequest) error {
	_, err := throttle.Do(ctx, c.t, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.next.UpdateKey(ctx, req)
	})
	return err
}
