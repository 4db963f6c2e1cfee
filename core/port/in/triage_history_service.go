package in

import (
	"context"
	"io"

	"triage_server/core/domain"
)

// ExportFormat selects the history export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ParseExportFormat returns ok=false for anything but csv or json.
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch ExportFormat(s) {
	case ExportCSV, "":
		return ExportCSV, true
	case ExportJSON:
		return ExportJSON, true
	}
	return "", false
}

// ListOptions filters a history listing. Zero values mean no filter.
type ListOptions struct {
	Limit    int
	Category domain.Category
}

// HistoryService defines the interface for history operations.
type HistoryService interface {
	Append(ctx context.Context, records ...domain.AnalysisRecord) error
	// List returns records newest first.
	List(ctx context.Context, opts ListOptions) ([]domain.AnalysisRecord, error)
	Get(ctx context.Context, id string) (*domain.AnalysisRecord, error)
	// Delete removes one record and arms the undo slot.
	Delete(ctx context.Context, id string) (*domain.AnalysisRecord, error)
	// Undo restores the most recently deleted record.
	Undo(ctx context.Context) (*domain.AnalysisRecord, error)
	Clear(ctx context.Context) error
	Export(ctx context.Context, w io.Writer, format ExportFormat, redact bool) error
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
}

// SettingsService defines the interface for routing and template settings.
type SettingsService interface {
	// Get returns the stored overrides merged over the defaults.
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) (domain.Settings, error)
	Reset(ctx context.Context) (domain.Settings, error)
}
