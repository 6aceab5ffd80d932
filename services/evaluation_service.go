package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecopredict/models"
	"ecopredict/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidRequest возвращается при некорректных параметрах запроса
var ErrInvalidRequest = errors.New("invalid request")

// EvaluationOutcome представляет ответ на запрос оценки:
// либо список результатов, либо сообщение об отсутствии клиента
type EvaluationOutcome struct {
	Results []models.SolvencyResult `json:"result,omitempty" yaml:"result,omitempty"`
	Message string                  `json:"message,omitempty" yaml:"message,omitempty"`
}

// NotFound сообщает, что для клиента не найдено ни одной записи
func (o *EvaluationOutcome) NotFound() bool {
	return len(o.Results) == 0
}

// NotFoundMessage формирует сообщение об отсутствии клиента
func NotFoundMessage(clientID string) string {
	return fmt.Sprintf("no result for client %s", clientID)
}

// EvaluationService связывает хранилище записей, расчет и журнал оценок
type EvaluationService struct {
	store     RecordStore
	engine    *SolvencyEngine
	history   HistoryLog
	notifier  Notifier
	metrics   *utils.Metrics
	validator *validator.Validate
	now       func() time.Time
}

// NewEvaluationService создает новый экземпляр EvaluationService.
// history может быть nil - тогда оценки не журналируются.
func NewEvaluationService(store RecordStore, engine *SolvencyEngine, history HistoryLog, notifier Notifier) *EvaluationService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}

	metrics := utils.GetMetrics()
	metrics.RegisterErrorKind(ErrDatasetUnavailable, "dataset_unavailable")
	metrics.RegisterErrorKind(ErrHistoryWrite, "history_write")
	metrics.RegisterErrorKind(context.Canceled, "canceled")
	metrics.RegisterErrorKind(context.DeadlineExceeded, "deadline_exceeded")

	return &EvaluationService{
		store:     store,
		engine:    engine,
		history:   history,
		notifier:  notifier,
		metrics:   metrics,
		validator: NewValidator(),
		now:       time.Now,
	}
}

// Evaluate находит записи клиента, рассчитывает платежеспособность по каждой
// и добавляет датированную запись в журнал
func (s *EvaluationService) Evaluate(ctx context.Context, req models.SolvencyRequest) (*EvaluationOutcome, error) {
	start := time.Now()

	outcome, err := s.evaluate(ctx, req)
	if err == nil && s.history != nil {
		entry := s.historyEntry(req, outcome)
		if err = s.history.Append(ctx, entry); err != nil {
			err = fmt.Errorf("%w: %w", ErrHistoryWrite, err)
		} else {
			s.notifier.NotifyEvaluation(entry)
		}
	}

	utils.LogOperation("evaluate client "+req.ClientID, start, err)
	if err != nil {
		if !errors.Is(err, ErrInvalidRequest) {
			s.metrics.RecordError(err)
		}
		return nil, err
	}
	return outcome, nil
}

// Preview рассчитывает оценку без записи в журнал
func (s *EvaluationService) Preview(ctx context.Context, req models.SolvencyRequest) (*EvaluationOutcome, error) {
	return s.evaluate(ctx, req)
}

func (s *EvaluationService) evaluate(ctx context.Context, req models.SolvencyRequest) (*EvaluationOutcome, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	records, err := s.store.FindByClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		s.metrics.RecordEvaluation(nil)
		return &EvaluationOutcome{Message: NotFoundMessage(req.ClientID)}, nil
	}

	outcome := &EvaluationOutcome{Results: make([]models.SolvencyResult, 0, len(records))}
	tiers := make([]string, 0, len(records))
	for _, record := range records {
		result := s.engine.Evaluate(record, req)
		outcome.Results = append(outcome.Results, result)
		tiers = append(tiers, string(result.SolvencyTier))
	}
	s.metrics.RecordEvaluation(tiers)

	return outcome, nil
}

// Recent возвращает последние n записей журнала
func (s *EvaluationService) Recent(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	if s.history == nil {
		return nil, ErrHistoryNotFound
	}
	return s.history.Recent(ctx, n)
}

func (s *EvaluationService) historyEntry(req models.SolvencyRequest, outcome *EvaluationOutcome) models.HistoryEntry {
	return models.HistoryEntry{
		ID:              uuid.NewString(),
		Timestamp:       s.now(),
		ClientID:        req.ClientID,
		RequestedAmount: req.RequestedAmount,
		AnnualRate:      req.AnnualRate,
		TermMonths:      req.TermMonths,
		Results:         outcome.Results,
		Message:         outcome.Message,
	}
}

// validate проверяет запрос и переводит ошибки валидатора в понятные сообщения
func (s *EvaluationService) validate(req models.SolvencyRequest) error {
	return ValidateStruct(s.validator, req)
}
