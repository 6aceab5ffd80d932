package services

import (
	"context"
	"fmt"

	"ecopredict/models"
	"gorm.io/gorm"
)

// DBRecordStore читает записи клиентов из PostgreSQL
type DBRecordStore struct {
	db *gorm.DB
}

// NewDBRecordStore создает новый экземпляр DBRecordStore
func NewDBRecordStore(db *gorm.DB) *DBRecordStore {
	return &DBRecordStore{db: db}
}

func preloadPeriods(db *gorm.DB) *gorm.DB {
	return db.Order("client_record_periods.position ASC")
}

// FindByClient возвращает записи клиента вместе с периодами
func (s *DBRecordStore) FindByClient(ctx context.Context, clientID string) ([]models.ClientRecord, error) {
	var records []models.ClientRecord
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", clientID).
		Preload("Periods", preloadPeriods).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: query client records: %v", ErrDatasetUnavailable, err)
	}
	return records, nil
}

// LoadAll возвращает все записи набора данных
func (s *DBRecordStore) LoadAll(ctx context.Context) ([]models.ClientRecord, error) {
	var records []models.ClientRecord
	if err := s.db.WithContext(ctx).
		Preload("Periods", preloadPeriods).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: load client records: %v", ErrDatasetUnavailable, err)
	}
	return records, nil
}
