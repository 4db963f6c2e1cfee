package settings

import (
	"context"

	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/core/port/out"
	"triage_server/pkg/apperr"
)

// Service loads stored overrides and merges them over the built-in tables.
type Service struct {
	repo out.SettingsRepository
}

var _ in.SettingsService = (*Service)(nil)

func NewService(repo out.SettingsRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Settings{}, apperr.StoreError("load settings", err)
	}
	if stored == nil {
		return domain.DefaultSettings(), nil
	}
	return domain.MergeOverDefaults(*stored), nil
}

// Save persists the merged document, so unknown keys and blank values never reach the store.
func (s *Service) Save(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	merged := domain.MergeOverDefaults(settings)
	if err := s.repo.Save(ctx, merged); err != nil {
		return domain.Settings{}, apperr.StoreError("save settings", err)
	}
	return merged, nil
}

// Reset deletes the stored document and returns the defaults.
func (s *Service) Reset(ctx context.Context) (domain.Settings, error) {
	if err := s.repo.Reset(ctx); err != nil {
		return domain.Settings{}, apperr.StoreError("reset settings", err)
	}
	return domain.DefaultSettings(), nil
}
