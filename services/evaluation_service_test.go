package services

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ecopredict/models"
	"ecopredict/utils"
)

type stubStore struct {
	records []models.ClientRecord
	err     error
	calls   int
}

func (s *stubStore) FindByClient(ctx context.Context, clientID string) ([]models.ClientRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return filterByClient(s.records, clientID), nil
}

type memoryHistory struct {
	mu      sync.Mutex
	entries []models.HistoryEntry
	err     error
}

func (h *memoryHistory) Append(ctx context.Context, entry models.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.entries = append(h.entries, entry)
	return nil
}

func (h *memoryHistory) Recent(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return lastEntries(h.entries, n), nil
}

func historyWriteErrors() int64 {
	types := utils.GetMetrics().GetMetricsSnapshot()["error_types"].(map[string]int64)
	return types["history_write"]
}

type recordingNotifier struct {
	entries []models.HistoryEntry
}

func (n *recordingNotifier) NotifyEvaluation(entry models.HistoryEntry) {
	n.entries = append(n.entries, entry)
}

func (n *recordingNotifier) Wait() {}

func newTestEvaluationService(store RecordStore, history HistoryLog, notifier Notifier) *EvaluationService {
	s := NewEvaluationService(store, NewSolvencyEngine(DefaultSolvencyPolicy()), history, notifier)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func validRequest() models.SolvencyRequest {
	return models.SolvencyRequest{
		ClientID:        "N23017007413",
		RequestedAmount: 1000,
		AnnualRate:      0.05,
		TermMonths:      60,
	}
}

func TestEvaluationService_Evaluate(t *testing.T) {
	store := &stubStore{records: []models.ClientRecord{
		flatRecord(),
		newTestRecord("OTHER", []float64{1, 1, 1, 1}, []float64{0, 0, 0, 0}),
		flatRecord(),
	}}
	history := &memoryHistory{}
	notifier := &recordingNotifier{}
	service := newTestEvaluationService(store, history, notifier)

	outcome, err := service.Evaluate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.NotFound() {
		t.Fatal("expected results")
	}
	if len(outcome.Results) != 2 {
		t.Fatalf("expected one result per matching record, got %d", len(outcome.Results))
	}
	if outcome.Results[0].MonthlyPayment != 18.87 {
		t.Errorf("expected monthly payment 18.87, got %.2f", outcome.Results[0].MonthlyPayment)
	}

	if len(history.entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history.entries))
	}
	entry := history.entries[0]
	if entry.ID == "" {
		t.Error("expected entry id to be set")
	}
	if !entry.Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", entry.Timestamp)
	}
	if entry.ClientID != "N23017007413" || entry.TermMonths != 60 || entry.AnnualRate != 0.05 {
		t.Errorf("request parameters not recorded: %+v", entry)
	}
	if len(entry.Results) != 2 || entry.Message != "" {
		t.Errorf("unexpected entry payload: %+v", entry)
	}
	if len(notifier.entries) != 1 {
		t.Errorf("expected notifier to be called once, got %d", len(notifier.entries))
	}
}

func TestEvaluationService_NotFound(t *testing.T) {
	store := &stubStore{records: []models.ClientRecord{flatRecord()}}
	history := &memoryHistory{}
	service := newTestEvaluationService(store, history, nil)

	req := validRequest()
	req.ClientID = "UNKNOWN"
	outcome, err := service.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.NotFound() {
		t.Fatal("expected not found outcome")
	}
	if outcome.Message != "no result for client UNKNOWN" {
		t.Errorf("unexpected message %q", outcome.Message)
	}
	if len(history.entries) != 1 || history.entries[0].Message != outcome.Message {
		t.Errorf("expected not-found evaluation to be recorded, got %+v", history.entries)
	}
}

func TestEvaluationService_InvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.SolvencyRequest)
		field  string
	}{
		{"missing client", func(r *models.SolvencyRequest) { r.ClientID = "" }, "field client_id is required"},
		{"zero term", func(r *models.SolvencyRequest) { r.TermMonths = 0 }, "field term_months must be greater than 0"},
		{"NaN amount", func(r *models.SolvencyRequest) { r.RequestedAmount = math.NaN() }, "field requested_amount must be a finite number"},
		{"infinite rate", func(r *models.SolvencyRequest) { r.AnnualRate = math.Inf(1) }, "field annual_rate must be a finite number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{records: []models.ClientRecord{flatRecord()}}
			history := &memoryHistory{}
			service := newTestEvaluationService(store, history, nil)

			req := validRequest()
			tt.mutate(&req)
			_, err := service.Evaluate(context.Background(), req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to name %s, got %v", tt.field, err)
			}
			if store.calls != 0 {
				t.Error("store must not be queried for an invalid request")
			}
			if len(history.entries) != 0 {
				t.Error("invalid request must not be recorded")
			}
		})
	}
}

func TestEvaluationService_AcceptsNegativeValues(t *testing.T) {
	store := &stubStore{records: []models.ClientRecord{flatRecord()}}
	history := &memoryHistory{}
	service := newTestEvaluationService(store, history, nil)

	req := validRequest()
	req.RequestedAmount = -1000
	req.AnnualRate = -0.05
	outcome, err := service.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Results) != 1 || len(history.entries) != 1 {
		t.Errorf("expected a recorded result, got %+v", outcome)
	}
}

func TestEvaluationService_ExtremeInputsAreRecorded(t *testing.T) {
	store := &stubStore{records: []models.ClientRecord{flatRecord()}}
	dir := t.TempDir()
	service := newTestEvaluationService(store, NewFileHistoryLog(filepath.Join(dir, "historique.json")), nil)

	req := validRequest()
	req.RequestedAmount = 1e300
	req.AnnualRate = 1e10
	outcome, err := service.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Results[0].SolvencyTier != models.SolvencyTierNotSolvent {
		t.Errorf("expected NotSolvent, got %s", outcome.Results[0].SolvencyTier)
	}

	recent, err := service.Recent(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("expected the evaluation to be recorded, got %d entries", len(recent))
	}
}

func TestEvaluationService_StoreError(t *testing.T) {
	store := &stubStore{err: ErrDatasetUnavailable}
	history := &memoryHistory{}
	service := newTestEvaluationService(store, history, nil)

	_, err := service.Evaluate(context.Background(), validRequest())
	if !errors.Is(err, ErrDatasetUnavailable) {
		t.Fatalf("expected ErrDatasetUnavailable, got %v", err)
	}
	if len(history.entries) != 0 {
		t.Error("failed evaluation must not be recorded")
	}
}

func TestEvaluationService_HistoryError(t *testing.T) {
	store := &stubStore{records: []models.ClientRecord{flatRecord()}}
	appendErr := errors.New("disk full")
	notifier := &recordingNotifier{}
	service := newTestEvaluationService(store, &memoryHistory{err: appendErr}, notifier)

	before := historyWriteErrors()
	_, err := service.Evaluate(context.Background(), validRequest())
	if !errors.Is(err, appendErr) || !errors.Is(err, ErrHistoryWrite) {
		t.Fatalf("expected wrapped append error, got %v", err)
	}
	if got := historyWriteErrors(); got != before+1 {
		t.Errorf("expected history_write error kind to grow by 1, got %d -> %d", before, got)
	}
	if len(notifier.entries) != 0 {
		t.Error("notifier must not be called when recording fails")
	}
}

func TestEvaluationService_PreviewSkipsHistory(t *testing.T) {
	store := &stubStore{records: []models.ClientRecord{flatRecord()}}
	history := &memoryHistory{}
	service := newTestEvaluationService(store, history, nil)

	outcome, err := service.Preview(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Results) != 1 {
		t.Errorf("expected one result, got %d", len(outcome.Results))
	}
	if len(history.entries) != 0 {
		t.Error("preview must not be recorded")
	}
}

func TestEvaluationService_Recent(t *testing.T) {
	store := &stubStore{records: []models.ClientRecord{flatRecord()}}
	history := &memoryHistory{}
	service := newTestEvaluationService(store, history, nil)

	for i := 0; i < 6; i++ {
		req := validRequest()
		req.RequestedAmount = float64(1000 + i)
		if _, err := service.Evaluate(context.Background(), req); err != nil {
			t.Fatalf("evaluate %d: %v", i, err)
		}
	}

	recent, err := service.Recent(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(recent))
	}
	if recent[0].RequestedAmount != 1002 || recent[3].RequestedAmount != 1005 {
		t.Errorf("unexpected order: %.0f .. %.0f", recent[0].RequestedAmount, recent[3].RequestedAmount)
	}

	withoutHistory := newTestEvaluationService(store, nil, nil)
	if _, err := withoutHistory.Recent(context.Background(), 4); !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("expected ErrHistoryNotFound, got %v", err)
	}
}
