package in

import (
	"context"

	"triage_server/core/domain"
)

// AnalysisService defines the interface for the full triage pipeline.
type AnalysisService interface {
	// Analyze validates, classifies, scores and records one message.
	Analyze(ctx context.Context, message string) (*domain.AnalysisRecord, error)
	// AnalyzeBulk records every valid item in one history write.
	AnalyzeBulk(ctx context.Context, messages []string) ([]BulkAnalysis, error)
	// Validate runs the input checks without classifying or recording.
	Validate(message string) *ValidateResponse
}

// BulkAnalysis is one item of a bulk analyze response.
type BulkAnalysis struct {
	Index      int                    `json:"index"`
	Record     *domain.AnalysisRecord `json:"record,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Validation *ValidateResponse      `json:"validation,omitempty"`
}

// ValidateResponse reports input problems found before classification.
type ValidateResponse struct {
	Valid             bool     `json:"valid"`
	Errors            []string `json:"errors"`
	Warnings          []string `json:"warnings"`
	PIIFindings       []string `json:"piiFindings"`
	ProfanityFindings []string `json:"profanityFindings"`
}
