// Package history owns the triage history: listing, deletion with undo, export and the dashboard.
package history

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/core/port/out"
	"triage_server/core/service/analysis"
	"triage_server/pkg/apperr"
	"triage_server/pkg/logger"
)

// undoSlot is the single pending undo. It is consumed on use.
type undoSlot struct {
	record domain.AnalysisRecord
	index  int
}

// Service serializes every read-modify-write of the history in this process.
// Writers in other processes sharing the store are last-writer-wins.
type Service struct {
	repo out.HistoryRepository
	log  *logger.Logger
	now  func() time.Time

	mu   sync.Mutex
	undo *undoSlot
}

var _ in.HistoryService = (*Service)(nil)

func NewService(repo out.HistoryRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		repo: repo,
		log:  log.WithComponent("history"),
		now:  time.Now,
	}
}

// Append adds records at the end in the given order, in one write.
func (s *Service) Append(ctx context.Context, records ...domain.AnalysisRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Load(ctx)
	if err != nil {
		return apperr.StoreError("load history", err)
	}
	current = append(current, records...)
	if err := s.repo.Save(ctx, current); err != nil {
		return apperr.StoreError("save history", err)
	}
	s.log.WithContext(ctx).Debug("appended %d records, history size %d", len(records), len(current))
	return nil
}

// List returns records sorted newest first. Records with equal timestamps keep reverse insertion order.
func (s *Service) List(ctx context.Context, opts in.ListOptions) ([]domain.AnalysisRecord, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AnalysisRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if opts.Category != "" && records[i].Category != opts.Category {
			continue
		}
		out = append(out, records[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i].Time()
		tj, _ := out[j].Time()
		return ti.After(tj)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(records, id); i >= 0 {
		rec := records[i]
		return &rec, nil
	}
	return nil, apperr.NotFound("record")
}

// Delete removes the record and replaces any pending undo with one for this deletion.
func (s *Service) Delete(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, apperr.StoreError("load history", err)
	}
	rest, removed, index := Remove(records, id)
	if index < 0 {
		return nil, apperr.NotFound("record")
	}
	if err := s.repo.Save(ctx, rest); err != nil {
		return nil, apperr.StoreError("save history", err)
	}
	s.undo = &undoSlot{record: removed, index: index}
	return &removed, nil
}

// Undo reinserts the last deleted record at its old position, clamped to the current length.
func (s *Service) Undo(ctx context.Context) (*domain.AnalysisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.undo == nil {
		return nil, apperr.ErrNothingToUndo
	}
	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, apperr.StoreError("load history", err)
	}
	slot := s.undo
	if err := s.repo.Save(ctx, InsertAt(records, slot.record, slot.index)); err != nil {
		return nil, apperr.StoreError("save history", err)
	}
	s.undo = nil
	rec := slot.record
	return &rec, nil
}

// Clear empties the history. It also drops the pending undo.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, []domain.AnalysisRecord{}); err != nil {
		return apperr.StoreError("clear history", err)
	}
	s.undo = nil
	s.log.WithContext(ctx).Info("history cleared")
	return nil
}

// Export writes the history in insertion order.
func (s *Service) Export(ctx context.Context, w io.Writer, format in.ExportFormat, redact bool) error {
	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	if redact {
		records = analysis.RedactRecords(records)
	}
	switch format {
	case in.ExportJSON:
		return analysis.ExportJSON(w, records)
	case in.ExportCSV:
		return analysis.ExportCSV(w, records)
	}
	return apperr.InvalidInput("format", "must be csv or json")
}

func (s *Service) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	d := analysis.ComputeDashboard(records, s.now())
	return &d, nil
}

func (s *Service) load(ctx context.Context) ([]domain.AnalysisRecord, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, apperr.StoreError("load history", err)
	}
	return records, nil
}

func indexOf(records []domain.AnalysisRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove returns a new slice without the record with id. index is -1 when it is absent.
func Remove(records []domain.AnalysisRecord, id string) (rest []domain.AnalysisRecord, removed domain.AnalysisRecord, index int) {
	index = indexOf(records, id)
	if index < 0 {
		return records, domain.AnalysisRecord{}, -1
	}
	rest = make([]domain.AnalysisRecord, 0, len(records)-1)
	rest = append(rest, records[:index]...)
	rest = append(rest, records[index+1:]...)
	return rest, records[index], index
}

// InsertAt returns a new slice with rec at index, clamped to [0, len(records)].
func InsertAt(records []domain.AnalysisRecord, rec domain.AnalysisRecord, index int) []domain.AnalysisRecord {
	if index < 0 {
		index = 0
	}
	if index > len(records) {
		index = len(records)
	}
	out := make([]domain.AnalysisRecord, 0, len(records)+1)
	out = append(out, records[:index]...)
	out = append(out, rec)
	return append(out, records[index:]...)
}
