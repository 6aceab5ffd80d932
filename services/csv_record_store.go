package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ecopredict/models"
)

const (
	creditColumnPrefix = "credit_"
	debitColumnPrefix  = "debit_"
)

// CSVRecordStore читает записи клиентов из CSV-файла при каждом обращении.
// Ожидаемые колонки: идентификатор счета и пары credit_<период> / debit_<период>.
type CSVRecordStore struct {
	path     string
	idColumn string
}

// NewCSVRecordStore создает новый экземпляр CSVRecordStore
func NewCSVRecordStore(path, idColumn string) *CSVRecordStore {
	if idColumn == "" {
		idColumn = "account_id"
	}
	return &CSVRecordStore{path: path, idColumn: idColumn}
}

// FindByClient загружает набор данных и фильтрует его по идентификатору клиента
func (s *CSVRecordStore) FindByClient(ctx context.Context, clientID string) ([]models.ClientRecord, error) {
	records, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByClient(records, clientID), nil
}

// LoadAll загружает все записи из файла
func (s *CSVRecordStore) LoadAll(ctx context.Context) ([]models.ClientRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDatasetUnavailable, s.path, err)
	}
	defer f.Close()

	records, err := parseRecords(ctx, f, s.idColumn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatasetUnavailable, s.path, err)
	}
	return records, nil
}

// periodColumns описывает положение колонок одного периода в заголовке
type periodColumns struct {
	period string
	credit int
	debit  int
}

// parseHeader находит колонку идентификатора и пары колонок периодов
func parseHeader(header []string, idColumn string) (int, []periodColumns, error) {
	idIdx := -1
	debitIdx := make(map[string]int)
	var periods []periodColumns

	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == idColumn:
			idIdx = i
		case strings.HasPrefix(name, creditColumnPrefix):
			periods = append(periods, periodColumns{
				period: strings.TrimPrefix(name, creditColumnPrefix),
				credit: i,
			})
		case strings.HasPrefix(name, debitColumnPrefix):
			debitIdx[strings.TrimPrefix(name, debitColumnPrefix)] = i
		}
	}

	if idIdx < 0 {
		return 0, nil, fmt.Errorf("missing column %q", idColumn)
	}
	if len(periods) == 0 {
		return 0, nil, errors.New("no credit_<period> columns")
	}
	if len(periods) != len(debitIdx) {
		return 0, nil, fmt.Errorf("found %d credit columns and %d debit columns", len(periods), len(debitIdx))
	}

	for i := range periods {
		idx, ok := debitIdx[periods[i].period]
		if !ok {
			return 0, nil, fmt.Errorf("missing column %q", debitColumnPrefix+periods[i].period)
		}
		periods[i].debit = idx
	}

	return idIdx, periods, nil
}

func parseRecords(ctx context.Context, r io.Reader, idColumn string) ([]models.ClientRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idIdx, periods, err := parseHeader(header, idColumn)
	if err != nil {
		return nil, err
	}

	var records []models.ClientRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		record := models.ClientRecord{
			AccountID: strings.TrimSpace(row[idIdx]),
			Periods:   make([]models.PeriodFlow, 0, len(periods)),
		}
		for pos, p := range periods {
			credit, err := parseAmount(row[p.credit])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s%s: %w", line, creditColumnPrefix, p.period, err)
			}
			debit, err := parseAmount(row[p.debit])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s%s: %w", line, debitColumnPrefix, p.period, err)
			}
			record.Periods = append(record.Periods, models.PeriodFlow{
				Position: pos,
				Period:   p.period,
				Credit:   credit,
				Debit:    debit,
			})
		}
		records = append(records, record)
	}

	return records, nil
}

func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}
