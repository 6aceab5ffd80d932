package services

import (
	"context"
	"encoding/json"
	"time"

	"ecopredict/models"
	"ecopredict/utils"
	"github.com/redis/go-redis/v9"
)

const recordCacheKeyPrefix = "ecopredict:records:"

// RecordCache хранит сериализованные записи клиентов
type RecordCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisRecordCache реализует RecordCache поверх Redis
type RedisRecordCache struct {
	client *redis.Client
}

// NewRedisRecordCache создает новый экземпляр RedisRecordCache
func NewRedisRecordCache(addr, password string, db int) *RedisRecordCache {
	return &RedisRecordCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Get возвращает значение по ключу; отсутствие ключа не является ошибкой
func (c *RedisRecordCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set сохраняет значение с временем жизни ttl
func (c *RedisRecordCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Ping проверяет доступность Redis
func (c *RedisRecordCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close закрывает подключение к Redis
func (c *RedisRecordCache) Close() error {
	return c.client.Close()
}

// CachedRecordStore кэширует результаты поиска по клиенту.
// Ошибки кэша не прерывают запрос: данные читаются из основного хранилища.
type CachedRecordStore struct {
	next  RecordStore
	cache RecordCache
	ttl   time.Duration
}

// NewCachedRecordStore создает новый экземпляр CachedRecordStore
func NewCachedRecordStore(next RecordStore, cache RecordCache, ttl time.Duration) *CachedRecordStore {
	return &CachedRecordStore{next: next, cache: cache, ttl: ttl}
}

// FindByClient возвращает записи клиента из кэша или из основного хранилища
func (s *CachedRecordStore) FindByClient(ctx context.Context, clientID string) ([]models.ClientRecord, error) {
	key := recordCacheKeyPrefix + clientID

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		utils.LogError("record cache get %s: %v", key, err)
	}
	if ok {
		var records []models.ClientRecord
		if err := json.Unmarshal([]byte(cached), &records); err == nil {
			return records, nil
		}
		utils.LogError("record cache entry %s is corrupt, reloading", key)
	}

	records, err := s.next.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return records, nil
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
		utils.LogError("record cache set %s: %v", key, err)
	}
	return records, nil
}
