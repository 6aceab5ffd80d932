package models

import (
	"time"

	"gorm.io/datatypes"
)

// HistoryEntry представляет запись журнала оценок
type HistoryEntry struct {
	ID              string           `json:"id" yaml:"id"`
	Timestamp       time.Time        `json:"timestamp" yaml:"timestamp"`
	ClientID        string           `json:"client_id" yaml:"client_id"`
	RequestedAmount float64          `json:"requested_amount" yaml:"requested_amount"`
	AnnualRate      float64          `json:"annual_rate" yaml:"annual_rate"`
	TermMonths      int              `json:"term_months" yaml:"term_months"`
	Results         []SolvencyResult `json:"results" yaml:"results"`
	Message         string           `json:"message,omitempty" yaml:"message,omitempty"`
}

// HasTier проверяет, содержит ли запись результат с указанной категорией
func (e HistoryEntry) HasTier(tier SolvencyTier) bool {
	for _, r := range e.Results {
		if r.SolvencyTier == tier {
			return true
		}
	}
	return false
}

// HistoryRecord - строка таблицы журнала оценок в PostgreSQL
type HistoryRecord struct {
	Seq             uint           `gorm:"column:seq;primaryKey;autoIncrement"`
	EntryID         string         `gorm:"column:entry_id;not null;uniqueIndex;size:36"`
	Timestamp       time.Time      `gorm:"column:timestamp;not null;index"`
	ClientID        string         `gorm:"column:client_id;not null;index;size:64"`
	RequestedAmount float64        `gorm:"column:requested_amount;not null"`
	AnnualRate      float64        `gorm:"column:annual_rate;not null"`
	TermMonths      int            `gorm:"column:term_months;not null"`
	Message         string         `gorm:"column:message;size:255"`
	Results         datatypes.JSON `gorm:"column:results;not null"`
}

func (HistoryRecord) TableName() string {
	return "evaluation_history"
}
