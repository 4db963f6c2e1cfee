package in

import (
	"context"

	"triage_server/core/domain"
)

// ClassifierService defines the interface for category classification.
type ClassifierService interface {
	// Classify never fails on a classifier outage; it falls back to the local rules.
	Classify(ctx context.Context, message string) (*domain.Classification, error)
	// ClassifyBulk keeps input order. Blank items are reported per index.
	ClassifyBulk(ctx context.Context, messages []string) ([]BulkClassification, error)
}

// BulkClassification is one item of a bulk classify response.
type BulkClassification struct {
	Index int `json:"index"`
	*domain.Classification
	Error string `json:"error,omitempty"`
}
