package services

import (
	"context"
	"errors"

	"ecopredict/models"
)

// ErrDatasetUnavailable возвращается, когда источник данных не удалось прочитать
var ErrDatasetUnavailable = errors.New("dataset unavailable")

// RecordStore предоставляет записи клиентов по идентификатору счета
type RecordStore interface {
	// FindByClient возвращает все записи с account_id, равным clientID.
	// Пустой результат не является ошибкой.
	FindByClient(ctx context.Context, clientID string) ([]models.ClientRecord, error)
}

// RecordLoader загружает набор данных целиком
type RecordLoader interface {
	LoadAll(ctx context.Context) ([]models.ClientRecord, error)
}

// filterByClient отбирает записи с точным совпадением account_id, сохраняя порядок и дубликаты
func filterByClient(records []models.ClientRecord, clientID string) []models.ClientRecord {
	matched := make([]models.ClientRecord, 0)
	for _, record := range records {
		if record.AccountID == clientID {
			matched = append(matched, record)
		}
	}
	return matched
}
