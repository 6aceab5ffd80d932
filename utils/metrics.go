package utils

import (
	"errors"
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики оценок
	TotalEvaluations   int64
	ClientsNotFound    int64
	TierCounts         map[string]int64
	LastEvaluationTime time.Time

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64

	errorKinds []errorKind
}

// errorKind связывает sentinel-ошибку с именем категории в ErrorTypes
type errorKind struct {
	target error
	name   string
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics()
	})
	return metrics
}

// NewMetrics создает пустой набор метрик
func NewMetrics() *Metrics {
	return &Metrics{
		TierCounts: make(map[string]int64),
		ErrorTypes: make(map[string]int64),
	}
}

// RecordRequest записывает метрики запроса
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordEvaluation записывает метрики оценки платежеспособности
func (m *Metrics) RecordEvaluation(tiers []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalEvaluations++
	m.LastEvaluationTime = time.Now()

	if len(tiers) == 0 {
		m.ClientsNotFound++
		return
	}
	for _, tier := range tiers {
		m.TierCounts[tier]++
	}
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()
	m.ErrorTypes[m.errorKindLocked(err)]++
}

// RegisterErrorKind задает категорию для ошибок, совпадающих с target по errors.Is.
// Повторная регистрация того же имени заменяет target.
func (m *Metrics) RegisterErrorKind(target error, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.errorKinds {
		if m.errorKinds[i].name == name {
			m.errorKinds[i].target = target
			return
		}
	}
	m.errorKinds = append(m.errorKinds, errorKind{target: target, name: name})
}

// errorKindLocked возвращает категорию ошибки; незарегистрированные попадают в "other"
func (m *Metrics) errorKindLocked(err error) string {
	if err == nil {
		return "unknown"
	}
	for _, k := range m.errorKinds {
		if errors.Is(err, k.target) {
			return k.name
		}
	}
	return "other"
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tiers := make(map[string]int64, len(m.TierCounts))
	for k, v := range m.TierCounts {
		tiers[k] = v
	}
	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"total_requests":    m.TotalRequests,
		"failed_requests":   m.FailedRequests,
		"average_latency":   m.AverageLatency.String(),
		"total_evaluations": m.TotalEvaluations,
		"clients_not_found": m.ClientsNotFound,
		"tiers":             tiers,
		"error_count":       m.ErrorCount,
		"last_error_time":   m.LastErrorTime,
		"error_types":       errorTypes,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.TotalEvaluations = 0
	m.ClientsNotFound = 0
	m.TierCounts = make(map[string]int64)
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
