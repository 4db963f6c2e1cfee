package bootstrap

import (
	"context"
	"io"
	"os"

	"triage_server/config"

	"github.com/goccy/go-json"
)

// RunAnalyze analyzes one message against the configured store and writes the record as JSON.
// Logs go to stderr so w stays machine-readable.
func RunAnalyze(ctx context.Context, cfg *config.Config, message string, w io.Writer) error {
	log := initLogger(cfg, "triage-cli", os.Stderr)

	deps, cleanup, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := deps.AnalysisService.Analyze(ctx, message)
	if err != nil {
		return err
	}
	return writeJSON(w, record)
}

// RunDashboard prints the dashboard computed from stored history.
func RunDashboard(ctx context.Context, cfg *config.Config, w io.Writer) error {
	log := initLogger(cfg, "triage-cli", os.Stderr)

	deps, cleanup, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	dashboard, err := deps.HistoryService.Dashboard(ctx)
	if err != nil {
		return err
	}
	return writeJSON(w, dashboard)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
