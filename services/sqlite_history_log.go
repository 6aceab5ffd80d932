package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ecopredict/models"
	"ecopredict/utils"
	_ "modernc.org/sqlite"
)

// SQLiteHistoryLog хранит журнал оценок в SQLite
type SQLiteHistoryLog struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteHistoryLog открывает (или создает) базу SQLite и таблицу журнала
func NewSQLiteHistoryLog(dbPath string) (*SQLiteHistoryLog, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	l := &SQLiteHistoryLog{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	utils.LogInfo("sqlite history log opened: %s", dbPath)
	return l, nil
}

func (l *SQLiteHistoryLog) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluation_history (
			seq              INTEGER PRIMARY KEY AUTOINCREMENT,
			id               TEXT NOT NULL UNIQUE,
			timestamp        INTEGER NOT NULL,
			client_id        TEXT NOT NULL,
			requested_amount REAL,
			annual_rate      REAL,
			term_months      INTEGER,
			message          TEXT,
			results          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_client ON evaluation_history(client_id)`,
	}

	for _, s := range stmts {
		if _, err := l.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Append добавляет запись в журнал
func (l *SQLiteHistoryLog) Append(ctx context.Context, entry models.HistoryEntry) error {
	results, err := json.Marshal(entry.Results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err = l.db.ExecContext(ctx, `INSERT INTO evaluation_history
		(id, timestamp, client_id, requested_amount, annual_rate, term_months, message, results)
		VALUES (?,?,?,?,?,?,?,?)`,
		entry.ID, entry.Timestamp.UnixNano(), entry.ClientID,
		entry.RequestedAmount, entry.AnnualRate, entry.TermMonths,
		entry.Message, string(results),
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// Recent возвращает последние n записей в порядке добавления.
// Пустой журнал дает ErrHistoryNotFound, как и отсутствующий файл.
func (l *SQLiteHistoryLog) Recent(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	if n <= 0 {
		return []models.HistoryEntry{}, nil
	}

	rows, err := l.db.QueryContext(ctx, `SELECT id, timestamp, client_id, requested_amount,
		annual_rate, term_months, message, results
		FROM (SELECT * FROM evaluation_history ORDER BY seq DESC LIMIT ?)
		ORDER BY seq ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var (
			entry   models.HistoryEntry
			ts      int64
			message sql.NullString
			results string
		)
		if err := rows.Scan(&entry.ID, &ts, &entry.ClientID, &entry.RequestedAmount,
			&entry.AnnualRate, &entry.TermMonths, &message, &results); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.Timestamp = time.Unix(0, ts)
		entry.Message = message.String
		if err := json.Unmarshal([]byte(results), &entry.Results); err != nil {
			return nil, fmt.Errorf("decode results of %s: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrHistoryNotFound
	}
	return entries, nil
}

// Close закрывает базу данных
func (l *SQLiteHistoryLog) Close() error {
	return l.db.Close()
}
