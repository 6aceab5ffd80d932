package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ecopredict/models"
)

// FileHistoryLog хранит журнал оценок в одном JSON-массиве на диске.
// Запись выполняется через временный файл и переименование под мьютексом,
// поэтому файл корректен при конкурентных запросах одного процесса.
type FileHistoryLog struct {
	path string
	mu   sync.Mutex
}

// NewFileHistoryLog создает новый экземпляр FileHistoryLog
func NewFileHistoryLog(path string) *FileHistoryLog {
	return &FileHistoryLog{path: path}
}

// Append добавляет запись в конец журнала, создавая файл при необходимости
func (l *FileHistoryLog) Append(ctx context.Context, entry models.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read()
	if err != nil && !errors.Is(err, ErrHistoryNotFound) {
		return err
	}
	entries = append(entries, entry)

	return l.write(entries)
}

// Recent возвращает последние n записей журнала
func (l *FileHistoryLog) Recent(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read()
	if err != nil {
		return nil, err
	}
	return lastEntries(entries, n), nil
}

func (l *FileHistoryLog) read() ([]models.HistoryEntry, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", l.path, err)
	}

	entries := []models.HistoryEntry{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", l.path, err)
	}
	return entries, nil
}

func (l *FileHistoryLog) write(entries []models.HistoryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
