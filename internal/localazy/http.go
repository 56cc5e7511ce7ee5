// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localazy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public Localazy API.
const DefaultBaseURL = "https://api.localazy.com"

const maxErrorBody = 4 << 10

// HTTPClient talks to the Localazy REST API.
type HTTPClient struct {
	baseURL   string
	token     string
	http      *http.Client
	userAgent string
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Pager  = (*HTTPClient)(nil)
)

// NewHTTPClient creates a client. A nil httpClient uses a client with a
// 30 second timeout.
func NewHTTPClient(baseURL, token string, httpClient *http.Client) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		http:      httpClient,
		userAgent: "ocms-localazy",
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func (c *HTTPClient) WithUserAgent(ua string) *HTTPClient {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// HTTPFactory returns a Factory creating HTTP clients that share httpClient.
// An empty userAgent keeps the default.
func HTTPFactory(baseURL, userAgent string, httpClient *http.Client) Factory {
	return func(token string) Client {
		return NewHTTPClient(baseURL, token, httpClient).WithUserAgent(userAgent)
	}
}

// ListProjects lists the projects the token can access.
func (c *HTTPClient) ListProjects(ctx context.Context, opts ProjectsOptions) ([]Project, error) {
	q := url.Values{}
	if opts.Organization {
		q.Set("organization", "true")
	}
	if opts.Languages {
		q.Set("languages", "true")
	}
	var out []Project
	if err := c.do(ctx, http.MethodGet, "/projects", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFiles lists the files of a project.
func (c *HTTPClient) ListFiles(ctx context.Context, project string) ([]File, error) {
	var out []File
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(project)+"/files", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListKeysPage fetches one page of keys. An empty next fetches the first page.
func (c *HTTPClient) ListKeysPage(ctx context.Context, req KeysRequest, next string) (KeysPage, error) {
	path := fmt.Sprintf("/projects/%s/files/%s/keys/%s",
		url.PathEscape(req.Project), url.PathEscape(req.File), url.PathEscape(req.Lang))
	q := url.Values{}
	if next != "" {
		q.Set("next", next)
	}
	var page KeysPage
	err := c.do(ctx, http.MethodGet, path, q, nil, &page)
	return page, err
}

// ListKeys fetches every page of keys.
func (c *HTTPClient) ListKeys(ctx context.Context, req KeysRequest) ([]Key, error) {
	return collectPages(ctx, req, c.ListKeysPage)
}

func collectPages(ctx context.Context, req KeysRequest, fetch func(context.Context, KeysRequest, string) (KeysPage, error)) ([]Key, error) {
	var (
		keys []Key
		next string
	)
	for {
		page, err := fetch(ctx, req, next)
		if err != nil {
			return nil, err
		}
		keys = append(keys, page.Keys...)
		if page.Next == "" || page.Next == next {
			return keys, nil
		}
		next = page.Next
	}
}

type importFile struct {
	Name    string         `json:"name"`
	Content map[string]any `json:"content"`
}

type importBody struct {
	ImportOptions
	Files []importFile `json:"files"`
}

// ImportJSON uploads content in one language as a JSON file.
func (c *HTTPClient) ImportJSON(ctx context.Context, req ImportRequest) (ImportResult, error) {
	name := req.File
	if name == "" {
		name = FileName
	}
	body := importBody{
		ImportOptions: req.Options,
		Files: []importFile{{
			Name:    name,
			Content: map[string]any{"type": "json", req.Lang: req.Content},
		}},
	}
	var out ImportResult
	err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(req.Project)+"/import", nil, body, &out)
	return out, err
}

// UpdateKey changes a key.
func (c *HTTPClient) UpdateKey(ctx context.Context, req KeyUpdateRequest) error {
	path := fmt.Sprintf("/projects/%s/keys/%s", url.PathEscape(req.Project), url.PathEscape(req.Key))
	body := map[string]any{"deprecated": req.Deprecated}
	return c.do(ctx, http.MethodPut, path, nil, body, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("localazy %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:     resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    errorMessage(resp.Body),
			RetryAfter: retryAfter(resp.Header),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts a message from an error body, which is either
// {"message": "..."} or plain text.
func errorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}

// Retry-After is reported in seconds on 429 responses.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
