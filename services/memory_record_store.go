package services

import (
	"context"
	"sync"
	"time"

	"ecopredict/models"
	"ecopredict/utils"
)

// MemoryRecordStore хранит набор данных в памяти и обновляет его по запросу.
// Первая загрузка выполняется при первом обращении.
type MemoryRecordStore struct {
	loader RecordLoader

	mu       sync.RWMutex
	index    map[string][]models.ClientRecord
	loaded   bool
	loadedAt time.Time
}

// NewMemoryRecordStore создает новый экземпляр MemoryRecordStore
func NewMemoryRecordStore(loader RecordLoader) *MemoryRecordStore {
	return &MemoryRecordStore{loader: loader}
}

// FindByClient возвращает записи клиента из кэша
func (s *MemoryRecordStore) FindByClient(ctx context.Context, clientID string) ([]models.ClientRecord, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if !loaded {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.ClientRecord, len(s.index[clientID]))
	copy(matched, s.index[clientID])
	return matched, nil
}

// Refresh перечитывает набор данных. При ошибке предыдущие данные сохраняются.
func (s *MemoryRecordStore) Refresh(ctx context.Context) error {
	start := time.Now()
	records, err := s.loader.LoadAll(ctx)
	utils.LogOperation("dataset refresh", start, err)
	if err != nil {
		return err
	}

	index := make(map[string][]models.ClientRecord)
	for _, record := range records {
		index[record.AccountID] = append(index[record.AccountID], record)
	}

	s.mu.Lock()
	s.index = index
	s.loaded = true
	s.loadedAt = time.Now()
	s.mu.Unlock()

	utils.LogInfo("dataset loaded: %d records, %d clients", len(records), len(index))
	return nil
}

// LoadedAt возвращает время последней успешной загрузки
func (s *MemoryRecordStore) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
