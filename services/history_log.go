package services

import (
	"context"
	"errors"

	"ecopredict/models"
)

// ErrHistoryNotFound возвращается, когда журнал оценок еще не создан
var ErrHistoryNotFound = errors.New("history log not found")

// ErrHistoryWrite оборачивает ошибки записи в журнал оценок
var ErrHistoryWrite = errors.New("record evaluation")

// HistoryLog - журнал оценок, допускающий только добавление записей.
// Реализации обязаны сериализовать конкурентные записи.
type HistoryLog interface {
	Append(ctx context.Context, entry models.HistoryEntry) error
	// Recent возвращает последние n записей в порядке добавления
	Recent(ctx context.Context, n int) ([]models.HistoryEntry, error)
}

// lastEntries возвращает хвост среза длиной не более n
func lastEntries(entries []models.HistoryEntry, n int) []models.HistoryEntry {
	if n <= 0 {
		return []models.HistoryEntry{}
	}
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]models.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}
