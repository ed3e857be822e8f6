package services

import (
	"context"
	"errors"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/settings"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
)

// SettingsService implements settings.Service. It keeps the stored settings
// row and the engine's in-memory snapshot in sync: every successful mutation
// is saved first, then swapped into the engine.
type SettingsService struct {
	repo     settings.Repository
	engine   *detector.Engine
	defaults detector.Settings
	logger   *logger.Logger
}

// NewSettingsService creates a new settings service. defaults are used when
// no settings row exists yet.
func NewSettingsService(repo settings.Repository, engine *detector.Engine, defaults detector.Settings, log *logger.Logger) *SettingsService {
	return &SettingsService{
		repo:     repo,
		engine:   engine,
		defaults: defaults,
		logger:   log,
	}
}

// Bootstrap loads the stored settings into the engine, seeding the store
// with the defaults on first start.
func (s *SettingsService) Bootstrap(ctx context.Context) error {
	stored, err := s.repo.Get(ctx)
	if errors.Is(err, settings.ErrNotFound) {
		if err := s.save(ctx, s.defaults); err != nil {
			return err
		}
		s.engine.ReplaceSettings(s.defaults)
		s.logger.Info("Detection settings initialized with defaults")
		return nil
	}
	if err != nil {
		return err
	}
	s.engine.ReplaceSettings(stored.Settings)
	return nil
}

// Get returns the active settings snapshot.
func (s *SettingsService) Get(ctx context.Context) (detector.Settings, error) {
	return s.engine.Settings(), nil
}

// Update merges the patch into the active settings, persists the result and
// swaps it into the engine.
func (s *SettingsService) Update(ctx context.Context, patch detector.SettingsPatch) (detector.Settings, error) {
	merged := s.engine.Settings().Merge(patch)
	if err := s.save(ctx, merged); err != nil {
		return detector.Settings{}, err
	}
	s.engine.ReplaceSettings(merged)

	s.logger.WithFields(map[string]interface{}{
		"enabled_checks": merged.EnabledChecks,
	}).Info("Detection settings updated")
	return merged, nil
}

// EnableCheck adds a check to the enabled set. Idempotent.
func (s *SettingsService) EnableCheck(ctx context.Context, checkID string) (detector.Settings, error) {
	updated := s.engine.Settings().WithCheckEnabled(checkID)
	if err := s.save(ctx, updated); err != nil {
		return detector.Settings{}, err
	}
	s.engine.ReplaceSettings(updated)
	return updated, nil
}

// DisableCheck removes a check from the enabled set. Idempotent.
func (s *SettingsService) DisableCheck(ctx context.Context, checkID string) (detector.Settings, error) {
	updated := s.engine.Settings().WithCheckDisabled(checkID)
	if err := s.save(ctx, updated); err != nil {
		return detector.Settings{}, err
	}
	s.engine.ReplaceSettings(updated)
	return updated, nil
}

func (s *SettingsService) save(ctx context.Context, value detector.Settings) error {
	return s.repo.Save(ctx, &settings.Stored{
		Settings:  value,
		UpdatedAt: time.Now().UTC(),
	})
}
