package persistence

import (
	"context"
	"fmt"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/logger"

	"github.com/goccy/go-json"
)

// =============================================================================
// History Repository
// =============================================================================

// HistoryRepository stores the whole history as one JSON array under out.HistoryKey.
type HistoryRepository struct {
	store out.KeyValueStore
	log   *logger.Logger
}

var _ out.HistoryRepository = (*HistoryRepository)(nil)

func NewHistoryRepository(store out.KeyValueStore, log *logger.Logger) *HistoryRepository {
	if log == nil {
		log = logger.Default()
	}
	return &HistoryRepository{store: store, log: log.WithComponent("history_repository")}
}

// Load treats a missing key and an unparseable document alike: an empty history.
func (r *HistoryRepository) Load(ctx context.Context) ([]domain.AnalysisRecord, error) {
	raw, ok, err := r.store.Get(ctx, out.HistoryKey)
	if err != nil {
		return nil, err
	}
	records := []domain.AnalysisRecord{}
	if !ok || len(raw) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		r.log.WithContext(ctx).WithError(err).Warn("stored history is malformed, treating as empty")
		return []domain.AnalysisRecord{}, nil
	}
	if records == nil {
		records = []domain.AnalysisRecord{}
	}
	return records, nil
}

func (r *HistoryRepository) Save(ctx context.Context, records []domain.AnalysisRecord) error {
	if records == nil {
		records = []domain.AnalysisRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return r.store.Set(ctx, out.HistoryKey, raw)
}

// =============================================================================
// Settings Repository
// =============================================================================

// SettingsRepository stores the settings document under out.SettingsKey.
type SettingsRepository struct {
	store out.KeyValueStore
	log   *logger.Logger
}

var _ out.SettingsRepository = (*SettingsRepository)(nil)

func NewSettingsRepository(store out.KeyValueStore, log *logger.Logger) *SettingsRepository {
	if log == nil {
		log = logger.Default()
	}
	return &SettingsRepository{store: store, log: log.WithComponent("settings_repository")}
}

// Load returns nil when nothing is stored or the document is malformed.
func (r *SettingsRepository) Load(ctx context.Context) (*domain.Settings, error) {
	raw, ok, err := r.store.Get(ctx, out.SettingsKey)
	if err != nil {
		return nil, err
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var s domain.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		r.log.WithContext(ctx).WithError(err).Warn("stored settings are malformed, using defaults")
		return nil, nil
	}
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return r.store.Set(ctx, out.SettingsKey, raw)
}

func (r *SettingsRepository) Reset(ctx context.Context) error {
	return r.store.Delete(ctx, out.SettingsKey)
}
