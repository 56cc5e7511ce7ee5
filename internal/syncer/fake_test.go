// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-localazy/internal/cache"
	"github.com/olegiv/ocms-localazy/internal/errtrack"
	"github.com/olegiv/ocms-localazy/internal/localazy"
	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
	"github.com/olegiv/ocms-localazy/internal/store"
	"github.com/olegiv/ocms-localazy/internal/testutil"
)

const testToken = "test-access-token"

// fakeLocalazy records calls and serves canned projects, files and keys.
type fakeLocalazy struct {
	mu sync.Mutex

	projects []localazy.Project
	files    []localazy.File
	keys     map[string][]localazy.Key // by language

	projectsErr error
	importErr   map[string]error // by language
	updateErr   map[string]error // by key id

	projectCalls int
	keyRequests  []localazy.KeysRequest
	imports      []localazy.ImportRequest
	updates      []localazy.KeyUpdateRequest
}

func newFakeLocalazy() *fakeLocalazy {
	return &fakeLocalazy{
		projects: []localazy.Project{{
			ID:             "p1",
			Name:           "Site",
			SourceLanguage: 1033,
			Languages: []localazy.Language{
				{ID: 1033, Code: "en", Name: "English", Enabled: true},
			},
		}},
		keys:      map[string][]localazy.Key{},
		importErr: map[string]error{},
		updateErr: map[string]error{},
	}
}

func (f *fakeLocalazy) withContentFile() *fakeLocalazy {
	f.files = append(f.files, localazy.File{ID: "f1", Type: "json", Name: localazy.FileName})
	return f
}

func (f *fakeLocalazy) ImportJSON(_ context.Context, req localazy.ImportRequest) (localazy.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.importErr[req.Lang]; err != nil {
		return localazy.ImportResult{}, err
	}
	f.imports = append(f.imports, req)
	return localazy.ImportResult{Result: "ok"}, nil
}

func (f *fakeLocalazy) ListFiles(context.Context, string) ([]localazy.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files, nil
}

func (f *fakeLocalazy) ListKeys(_ context.Context, req localazy.KeysRequest) ([]localazy.Key, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyRequests = append(f.keyRequests, req)
	return f.keys[req.Lang], nil
}

func (f *fakeLocalazy) ListProjects(context.Context, localazy.ProjectsOptions) ([]localazy.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectCalls++
	if f.projectsErr != nil {
		return nil, f.projectsErr
	}
	return f.projects, nil
}

func (f *fakeLocalazy) UpdateKey(_ context.Context, req localazy.KeyUpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[req.Key]; err != nil {
		return err
	}
	f.updates = append(f.updates, req)
	return nil
}

// importsFor returns the recorded import requests of one language.
func (f *fakeLocalazy) importsFor(lang string) []localazy.ImportRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []localazy.ImportRequest
	for _, req := range f.imports {
		if req.Lang == lang {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakeLocalazy) updatedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, u := range f.updates {
		out = append(out, u.Key)
	}
	return out
}

func key(id string, value any, path ...string) localazy.Key {
	return localazy.Key{ID: id, Key: path, Value: value}
}

type fixture struct {
	store   *store.Store
	remote  *fakeLocalazy
	service *Service
	tracker *errtrack.Tracker
}

type fixtureConfig struct {
	settings  model.Settings
	setup     model.ContentTransferSetup
	storeOpts []store.Option
	service   Config
}

type fixtureOption func(*fixtureConfig)

// newFixture wires a service to a seeded store holding the articles
// collection and to a fake Localazy project.
func newFixture(t *testing.T, remote *fakeLocalazy, opts ...fixtureOption) *fixture {
	t.Helper()
	ctx := context.Background()

	cfg := fixtureConfig{
		settings: model.DefaultSettings(),
		setup: model.ContentTransferSetup{
			EnabledFields:      model.PrepareEnabledFields([]model.EnabledField{{Collection: "articles", Fields: []string{"title", "body"}}}),
			TranslationStrings: true,
		},
		service: Config{ChunkSize: 1000},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := testutil.TestStore(t, cfg.storeOpts...)
	testutil.SeedArticles(t, s)
	require.NoError(t, s.SaveSettings(ctx, cfg.settings))
	require.NoError(t, s.SaveContentTransferSetup(ctx, cfg.setup))
	require.NoError(t, s.SaveLocalazyData(ctx, model.LocalazyData{AccessToken: testToken, ProjectID: "p1"}))

	logger := testutil.TestLoggerSilent()
	tracker := errtrack.New(logger, errtrack.DefaultCapacity)
	svc := New(Deps{
		Store:    s,
		Model:    s,
		Localazy: func(string) localazy.Client { return remote },
		Tracker:  tracker,
		Cache:    cache.NewMemoryCache(cache.MemoryCacheOptions{}),
	}, cfg.service, logger)

	return &fixture{store: s, remote: remote, service: svc, tracker: tracker}
}

func withSettings(fn func(*model.Settings)) fixtureOption {
	return func(c *fixtureConfig) { fn(&c.settings) }
}

func withSetup(fn func(*model.ContentTransferSetup)) fixtureOption {
	return func(c *fixtureConfig) { fn(&c.setup) }
}

func withServiceConfig(fn func(*Config)) fixtureOption {
	return func(c *fixtureConfig) { fn(&c.service) }
}

func withStoreOptions(opts ...store.Option) fixtureOption {
	return func(c *fixtureConfig) { c.storeOpts = append(c.storeOpts, opts...) }
}

// translationRow returns the translation row of an article in language.
func (fx *fixture) translationRow(t *testing.T, id, language string) model.Item {
	t.Helper()
	items, err := fx.store.FetchItems(context.Background(), testutil.ArticlesCollection, source.Query{
		Fields: []string{"id", "translations.*"},
		IDs:    []string{id},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	rows, _ := items[0]["translations"].([]any)
	for _, r := range rows {
		row, ok := r.(model.Item)
		if ok && row["languages_code"] == language {
			return row
		}
	}
	return nil
}
