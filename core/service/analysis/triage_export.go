package analysis

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"triage_server/core/domain"

	"github.com/goccy/go-json"
)

// CSVColumns is the export header, in column order.
var CSVColumns = []string{
	"timestamp", "message", "categories", "urgency", "recommendedAction", "routingDestination",
	"escalate", "needsReview", "confidence", "model", "latencyMs", "cached", "piiFindings", "reasoning",
}

// ExportCSV writes one row per record. Every string field is quoted, which
// encoding/csv only does on demand, so rows are assembled here.
func ExportCSV(w io.Writer, records []domain.AnalysisRecord) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(CSVColumns, ",") + "\n"); err != nil {
		return err
	}
	for i := range records {
		if _, err := bw.WriteString(csvRow(&records[i])); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func csvRow(r *domain.AnalysisRecord) string {
	latency := ""
	if r.LatencyMs != nil {
		latency = strconv.FormatInt(*r.LatencyMs, 10)
	}
	fields := []string{
		quote(r.Timestamp),
		quote(r.Message),
		quote(strings.Join(domain.CategoryStrings(r.Categories), ";")),
		quote(string(r.Urgency)),
		quote(r.RecommendedAction),
		quote(r.RoutingDestination),
		strconv.FormatBool(r.Escalate),
		strconv.FormatBool(r.NeedsReview),
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		quote(r.Model),
		latency,
		strconv.FormatBool(r.Cached),
		quote(strings.Join(r.PIIFindings, ";")),
		quote(r.Reasoning),
	}
	return strings.Join(fields, ",") + "\n"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportJSON writes the records as an indented JSON array.
func ExportJSON(w io.Writer, records []domain.AnalysisRecord) error {
	if records == nil {
		records = []domain.AnalysisRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// RedactRecords returns copies with PII masked in message and reasoning.
func RedactRecords(records []domain.AnalysisRecord) []domain.AnalysisRecord {
	out := make([]domain.AnalysisRecord, len(records))
	for i, r := range records {
		r.Message = RedactPII(r.Message)
		r.Reasoning = RedactPII(r.Reasoning)
		out[i] = r
	}
	return out
}
