// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-localazy/internal/langmap"
	"github.com/olegiv/ocms-localazy/internal/model"
	"github.com/olegiv/ocms-localazy/internal/source"
)

// ConfigStore persists the synchronization configuration.
type ConfigStore interface {
	FetchSettings(ctx context.Context) (*model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error
	FetchContentTransferSetup(ctx context.Context) (*model.ContentTransferSetup, error)
	SaveContentTransferSetup(ctx context.Context, setup model.ContentTransferSetup) error
	FetchLocalazyData(ctx context.Context) (*model.LocalazyData, error)
	SaveLocalazyData(ctx context.Context, d model.LocalazyData) error
}

// Invalidator drops cached data derived from the configuration.
type Invalidator interface {
	InvalidateProject(ctx context.Context) error
	InvalidateSchemas(ctx context.Context) error
}

// ConfigHandler manages settings, the content transfer setup and the
// Localazy connection.
type ConfigHandler struct {
	store   ConfigStore
	caches  Invalidator
	catalog *langmap.Catalog
	logger  *slog.Logger
}

// NewConfigHandler creates a new ConfigHandler. A nil catalog uses the
// built-in one.
func NewConfigHandler(store ConfigStore, caches Invalidator, catalog *langmap.Catalog, logger *slog.Logger) *ConfigHandler {
	if catalog == nil {
		catalog = langmap.DefaultCatalog()
	}
	return &ConfigHandler{store: store, caches: caches, catalog: catalog, logger: logger}
}

// setupPayload is the API form of model.ContentTransferSetup with the
// enabled fields decoded.
type setupPayload struct {
	EnabledFields      []model.EnabledField `json:"enabled_fields"`
	TranslationStrings bool                 `json:"translation_strings"`
}

// localazyDataView hides the access token.
type localazyDataView struct {
	Connected   bool   `json:"connected"`
	AccessToken string `json:"access_token,omitempty"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	OrgID       string `json:"org_id"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	ProjectURL  string `json:"project_url"`
}

func newLocalazyDataView(d model.LocalazyData) localazyDataView {
	return localazyDataView{
		Connected:   d.Connected(),
		AccessToken: maskToken(d.AccessToken),
		UserID:      d.UserID,
		UserName:    d.UserName,
		OrgID:       d.OrgID,
		ProjectID:   d.ProjectID,
		ProjectName: d.ProjectName,
		ProjectURL:  d.ProjectURL,
	}
}

// maskToken keeps the last four characters of a token.
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", 8) + token[len(token)-4:]
}

// GetSettings handles GET /api/settings.
func (h *ConfigHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.FetchSettings(r.Context())
	if err != nil {
		h.fetchError(w, "settings", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"settings": settings})
}

// UpdateSettings handles PUT /api/settings. Fields missing from the body
// keep their stored value.
func (h *ConfigHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.store.FetchSettings(ctx)
	switch {
	case errors.Is(err, source.ErrNotFound):
		def := model.DefaultSettings()
		settings = &def
	case err != nil:
		logAndInternalError(w, "failed to load settings", "error", err)
		return
	}

	if err := decodeJSON(w, r, settings, false); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := settings.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if res := langmap.ValidateMappings(settings.LanguageMappings); !res.Valid {
		writeJSON(w, http.StatusBadRequest, false, map[string]any{
			"error":  "invalid language mappings",
			"errors": res.Errors,
		})
		return
	}

	if err := h.store.SaveSettings(ctx, *settings); err != nil {
		logAndInternalError(w, "failed to save settings", "error", err)
		return
	}
	if err := h.caches.InvalidateSchemas(ctx); err != nil {
		h.logger.Warn("failed to invalidate schema cache", "category", "config", "error", err)
	}
	h.logger.Info("settings updated", "category", "config")
	writeJSONSuccess(w, map[string]any{"settings": settings})
}

// GetContentTransferSetup handles GET /api/content-transfer-setup.
func (h *ConfigHandler) GetContentTransferSetup(w http.ResponseWriter, r *http.Request) {
	setup, err := h.store.FetchContentTransferSetup(r.Context())
	if err != nil {
		h.fetchError(w, "content transfer setup", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"setup": setupPayload{
		EnabledFields:      model.ParseEnabledFields(setup.EnabledFields),
		TranslationStrings: setup.TranslationStrings,
	}})
}

// UpdateContentTransferSetup handles PUT /api/content-transfer-setup.
func (h *ConfigHandler) UpdateContentTransferSetup(w http.ResponseWriter, r *http.Request) {
	var req setupPayload
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i, ef := range req.EnabledFields {
		if ef.Collection == "" {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("enabled_fields: entry %d has no collection", i+1))
			return
		}
	}
	if req.EnabledFields == nil {
		req.EnabledFields = []model.EnabledField{}
	}

	setup := model.ContentTransferSetup{
		EnabledFields:      model.PrepareEnabledFields(req.EnabledFields),
		TranslationStrings: req.TranslationStrings,
	}
	if err := h.store.SaveContentTransferSetup(r.Context(), setup); err != nil {
		logAndInternalError(w, "failed to save content transfer setup", "error", err)
		return
	}
	h.logger.Info("content transfer setup updated", "category", "config",
		"collections", len(model.EnabledCollections(req.EnabledFields)))
	writeJSONSuccess(w, map[string]any{"setup": req})
}

// GetLocalazyData handles GET /api/localazy-data.
func (h *ConfigHandler) GetLocalazyData(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.FetchLocalazyData(r.Context())
	if err != nil {
		h.fetchError(w, "localazy data", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"localazy_data": newLocalazyDataView(*d)})
}

// UpdateLocalazyData handles PUT /api/localazy-data. Changing the
// connection drops the cached project.
func (h *ConfigHandler) UpdateLocalazyData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := h.store.FetchLocalazyData(ctx)
	switch {
	case errors.Is(err, source.ErrNotFound):
		d = &model.LocalazyData{}
	case err != nil:
		logAndInternalError(w, "failed to load localazy data", "error", err)
		return
	}

	if err := decodeJSON(w, r, d, false); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	d.AccessToken = strings.TrimSpace(d.AccessToken)

	if err := h.store.SaveLocalazyData(ctx, *d); err != nil {
		logAndInternalError(w, "failed to save localazy data", "error", err)
		return
	}
	if err := h.caches.InvalidateProject(ctx); err != nil {
		h.logger.Warn("failed to invalidate project cache", "category", "config", "error", err)
	}
	h.logger.Info("localazy connection updated", "category", "config", "connected", d.Connected(), "project_id", d.ProjectID)
	writeJSONSuccess(w, map[string]any{"localazy_data": newLocalazyDataView(*d)})
}

// ValidateMappings handles POST /api/mappings/validate. The body holds the
// mappings either as a JSON array or as the persisted JSON text.
func (h *ConfigHandler) ValidateMappings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mappings any `json:"mappings"`
	}
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var text string
	switch v := req.Mappings.(type) {
	case nil:
		text = "[]"
	case string:
		text = v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		text = string(raw)
	}

	res := langmap.ValidateMappings(text)
	writeJSONSuccess(w, map[string]any{"valid": res.Valid, "errors": res.Errors})
}

// LanguageCatalog handles GET /api/languages/catalog. The optional q
// parameter filters by locale or name prefix.
func (h *ConfigHandler) LanguageCatalog(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	all := h.catalog.All()
	languages := make([]langmap.RemoteLanguage, 0, len(all))
	for _, l := range all {
		if q == "" || strings.HasPrefix(strings.ToLower(l.Locale), q) || strings.HasPrefix(strings.ToLower(l.Name), q) {
			languages = append(languages, l)
		}
	}
	writeJSONSuccess(w, map[string]any{"languages": languages, "total": len(languages)})
}

func (h *ConfigHandler) fetchError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, source.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, what+" not configured")
		return
	}
	logAndInternalError(w, "failed to load "+what, "error", err)
}
