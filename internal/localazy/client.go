// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package localazy is a client for the Localazy REST API.
package localazy

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Client is the subset of the Localazy API used for synchronization.
type Client interface {
	ImportJSON(ctx context.Context, req ImportRequest) (ImportResult, error)
	ListFiles(ctx context.Context, project string) ([]File, error)
	ListKeys(ctx context.Context, req KeysRequest) ([]Key, error)
	ListProjects(ctx context.Context, opts ProjectsOptions) ([]Project, error)
	UpdateKey(ctx context.Context, req KeyUpdateRequest) error
}

// Pager is implemented by clients that can fetch keys one page at a time.
type Pager interface {
	ListKeysPage(ctx context.Context, req KeysRequest, next string) (KeysPage, error)
}

// Factory returns a client authenticated with token.
type Factory func(token string) Client

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
	// RetryAfter is set on 429 responses that carry a Retry-After header.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("localazy %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// StatusCode returns the HTTP status of the response.
func (e *APIError) StatusCode() int {
	return e.Status
}
