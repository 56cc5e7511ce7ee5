// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package syncer orchestrates export, import and deprecation between the
// content store and Localazy.
//
// Every public operation loads the persisted configuration afresh and
// builds its own language mapper, so concurrent invocations never share
// mutable state. Failures after configuration loading are tracked and
// reported, not returned.
package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/ocms-localazy/internal/cache"
	"github.com/olegiv/ocms-localazy/internal/errtrack"
	"github.com/olegiv/ocms-localazy/internal/langmap"
	"github.com/olegiv/ocms-localazy/internal/localazy"
	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

var (
	// ErrMissingConfiguration is returned when settings, the content
	// transfer setup or the Localazy credentials are absent or invalid.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrProjectUnavailable is reported when no Localazy project can be loaded.
	ErrProjectUnavailable = errors.New("no connected project")

	// ErrSyncDisabled is reported when the organization owning the project
	// has a blocked payment status.
	ErrSyncDisabled = errors.New("sync operations disabled due to payment status")
)

// Deps are the collaborators of the Service.
type Deps struct {
	Store    source.Store
	Model    source.DataModel
	Localazy localazy.Factory // clients should be throttled
	Tracker  *errtrack.Tracker
	Cache    cache.Cache      // optional
	Catalog  *langmap.Catalog // nil uses the default catalog
	Now      func() time.Time // nil uses time.Now
}

// Config tunes pacing and payload sizes.
type Config struct {
	ExportDelay      time.Duration
	CollectionDelay  time.Duration
	DeprecationDelay time.Duration
	ChunkSize        int
	CacheTTL         time.Duration
	SanitizeHTML     bool // strip unsafe markup from imported values

	// BlockedPaymentStatuses disable synchronization when the project
	// organization reports one of them. Nil selects the defaults.
	BlockedPaymentStatuses []string
}

// DefaultConfig returns the pacing used against the public API.
func DefaultConfig() Config {
	return Config{
		ExportDelay:      150 * time.Millisecond,
		CollectionDelay:  50 * time.Millisecond,
		DeprecationDelay: 100 * time.Millisecond,
		ChunkSize:        1000,
		CacheTTL:         5 * time.Minute,

		BlockedPaymentStatuses: []string{"suspended", "unpaid"},
	}
}

// Service runs synchronization invocations.
type Service struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger

	projects *cache.Typed[localazy.Project]
	schemas  *cache.Typed[collectionSchema]
}

// New creates a Service.
func New(deps Deps, cfg Config, logger *slog.Logger) *Service {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.BlockedPaymentStatuses == nil {
		cfg.BlockedPaymentStatuses = def.BlockedPaymentStatuses
	}
	if deps.Catalog == nil {
		deps.Catalog = langmap.DefaultCatalog()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Tracker == nil {
		deps.Tracker = errtrack.New(logger, errtrack.DefaultCapacity)
	}

	s := &Service{deps: deps, cfg: cfg, logger: logger}
	if deps.Cache != nil {
		s.projects = cache.NewTyped[localazy.Project](deps.Cache, "project", cfg.CacheTTL)
		s.schemas = cache.NewTyped[collectionSchema](deps.Cache, "schema", cfg.CacheTTL)
	}
	return s
}

// Tracker returns the error tracker of the service.
func (s *Service) Tracker() *errtrack.Tracker {
	return s.deps.Tracker
}

// invocation is the configuration of one synchronization run.
type invocation struct {
	settings model.Settings
	setup    model.ContentTransferSetup
	data     model.LocalazyData
	enabled  []model.EnabledField
	mapper   *langmap.Mapper
	client   localazy.Client
	project  localazy.Project
}

// remoteSourceLanguage is the Localazy locale content in the source
// language is uploaded under.
func (s *Service) remoteSourceLanguage(inv *invocation) string {
	return langmap.SourceLanguageToRemote(s.deps.Catalog, inv.project.SourceLanguage, inv.settings.SourceLanguage)
}

// loadInvocation reads the persisted configuration and loads the project.
// Missing configuration yields ErrMissingConfiguration and an unreachable
// project ErrProjectUnavailable.
func (s *Service) loadInvocation(ctx context.Context, operation string) (*invocation, error) {
	settings, err := s.deps.Store.FetchSettings(ctx)
	if err != nil {
		return nil, s.configurationError(err, "settings", operation)
	}
	if err := settings.Validate(); err != nil {
		return nil, s.configurationError(err, "settings", operation)
	}
	setup, err := s.deps.Store.FetchContentTransferSetup(ctx)
	if err != nil {
		return nil, s.configurationError(err, "content transfer setup", operation)
	}
	data, err := s.deps.Store.FetchLocalazyData(ctx)
	if err != nil {
		return nil, s.configurationError(err, "localazy data", operation)
	}
	if !data.Connected() {
		return nil, s.configurationError(errors.New("access token is empty"), "localazy data", operation)
	}

	if setup.EnabledFields != "" && !json.Valid([]byte(setup.EnabledFields)) {
		s.deps.Tracker.TrackValidation("enabled fields are not valid JSON", operation, nil)
	}
	if res := langmap.ValidateMappings(settings.LanguageMappings); !res.Valid {
		s.deps.Tracker.TrackValidation("invalid language mappings", operation, map[string]any{"errors": res.Errors})
	}

	inv := &invocation{
		settings: *settings,
		setup:    *setup,
		data:     *data,
		enabled:  model.ParseEnabledFields(setup.EnabledFields),
		mapper:   langmap.New(settings.LanguageMappings, s.logger),
		client:   s.deps.Localazy(data.AccessToken),
	}

	project, err := s.loadProject(ctx, inv)
	if err != nil {
		return nil, err
	}
	if status, blocked := s.paymentBlocked(project); blocked {
		s.logger.Error("sync operations disabled due to payment status", "category", "system",
			"operation", operation, "project", project.ID, "payment_status", status)
		return nil, ErrSyncDisabled
	}
	inv.project = project
	return inv, nil
}

// paymentBlocked reports whether the organization of project has a blocked
// payment status. Projects loaded without their organization pass.
func (s *Service) paymentBlocked(project localazy.Project) (string, bool) {
	if project.Organization == nil {
		return "", false
	}
	status := project.Organization.PaymentStatus
	for _, b := range s.cfg.BlockedPaymentStatuses {
		if strings.EqualFold(status, b) {
			return status, true
		}
	}
	return status, false
}

func (s *Service) configurationError(err error, what, operation string) error {
	msg := fmt.Sprintf("%s: %v", what, err)
	if errors.Is(err, source.ErrNotFound) {
		msg = what + " not found"
	}
	s.deps.Tracker.TrackConfiguration(msg, operation, nil)
	return fmt.Errorf("%w: %s", ErrMissingConfiguration, msg)
}

// loadProject returns the first project visible to the access token.
func (s *Service) loadProject(ctx context.Context, inv *invocation) (localazy.Project, error) {
	load := func(ctx context.Context) (localazy.Project, error) {
		projects, err := inv.client.ListProjects(ctx, localazy.ProjectsOptions{Organization: true, Languages: true})
		if err != nil {
			s.deps.Tracker.TrackLocalazyError(err, "loadProject", nil)
			return localazy.Project{}, fmt.Errorf("%w: %v", ErrProjectUnavailable, err)
		}
		if len(projects) == 0 {
			return localazy.Project{}, ErrProjectUnavailable
		}
		return projects[0], nil
	}
	if s.projects == nil {
		return load(ctx)
	}
	return s.projects.GetOrLoad(ctx, tokenKey(inv.data.AccessToken), load)
}

// InvalidateProject drops the cached project of every token, for example
// after the Localazy connection changed.
func (s *Service) InvalidateProject(ctx context.Context) error {
	if s.projects == nil {
		return nil
	}
	return s.projects.Invalidate(ctx)
}

// InvalidateSchemas drops cached collection schemas.
func (s *Service) InvalidateSchemas(ctx context.Context) error {
	if s.schemas == nil {
		return nil
	}
	return s.schemas.Invalidate(ctx)
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// start loads the invocation for a report. A nil invocation with a nil
// error means the report was closed as skipped.
func (s *Service) start(ctx context.Context, r *Report) (*invocation, error) {
	inv, err := s.loadInvocation(ctx, r.Operation)
	switch {
	case err == nil:
		return inv, nil
	case errors.Is(err, ErrMissingConfiguration):
		r.fail(err)
		s.finish(r)
		return nil, err
	default:
		r.skip(err.Error())
		s.finish(r)
		return nil, nil
	}
}
