package services

import (
	"context"
	"encoding/json"
	"fmt"

	"ecopredict/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DBHistoryLog хранит журнал оценок в PostgreSQL
type DBHistoryLog struct {
	db *gorm.DB
}

// NewDBHistoryLog создает новый экземпляр DBHistoryLog
func NewDBHistoryLog(db *gorm.DB) *DBHistoryLog {
	return &DBHistoryLog{db: db}
}

// Append добавляет запись в журнал
func (l *DBHistoryLog) Append(ctx context.Context, entry models.HistoryEntry) error {
	results, err := json.Marshal(entry.Results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	record := &models.HistoryRecord{
		EntryID:         entry.ID,
		Timestamp:       entry.Timestamp,
		ClientID:        entry.ClientID,
		RequestedAmount: entry.RequestedAmount,
		AnnualRate:      entry.AnnualRate,
		TermMonths:      entry.TermMonths,
		Message:         entry.Message,
		Results:         datatypes.JSON(results),
	}
	if err := l.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// Recent возвращает последние n записей в порядке добавления.
// Пустая таблица дает ErrHistoryNotFound.
func (l *DBHistoryLog) Recent(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	if n <= 0 {
		return []models.HistoryEntry{}, nil
	}

	var records []models.HistoryRecord
	if err := l.db.WithContext(ctx).
		Order("seq DESC").
		Limit(n).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrHistoryNotFound
	}

	entries := make([]models.HistoryEntry, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		entry := models.HistoryEntry{
			ID:              r.EntryID,
			Timestamp:       r.Timestamp,
			ClientID:        r.ClientID,
			RequestedAmount: r.RequestedAmount,
			AnnualRate:      r.AnnualRate,
			TermMonths:      r.TermMonths,
			Message:         r.Message,
		}
		if err := json.Unmarshal(r.Results, &entry.Results); err != nil {
			return nil, fmt.Errorf("decode results of %s: %w", r.EntryID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
