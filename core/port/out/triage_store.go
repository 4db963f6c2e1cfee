package out

import (
	"context"

	"triage_server/core/domain"
)

// Storage keys shared by every KeyValueStore backend.
const (
	HistoryKey  = "triageHistory"
	SettingsKey = "triageSettings"
)

// KeyValueStore defines the outbound port for document persistence.
type KeyValueStore interface {
	// Get returns the stored bytes; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores with a remote backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HistoryRepository defines the outbound port for the triage history.
type HistoryRepository interface {
	// Load returns the history in insertion order. Missing or malformed data is an empty history.
	Load(ctx context.Context) ([]domain.AnalysisRecord, error)
	Save(ctx context.Context, records []domain.AnalysisRecord) error
}

// SettingsRepository defines the outbound port for routing and template overrides.
type SettingsRepository interface {
	// Load returns the stored document, or nil when nothing usable is stored.
	Load(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
	Reset(ctx context.Context) error
}
