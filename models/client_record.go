package models

// ClientRecord представляет историю операций одного счета клиента
type ClientRecord struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"-"`
	AccountID string       `gorm:"column:account_id;not null;index;size:64" json:"account_id"`
	Periods   []PeriodFlow `gorm:"foreignKey:RecordID" json:"periods"`
}

func (ClientRecord) TableName() string {
	return "client_records"
}

// PeriodFlow представляет сумму кредитовых и дебетовых операций за один период
type PeriodFlow struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"-"`
	RecordID uint    `gorm:"column:record_id;not null;index" json:"-"`
	Position int     `gorm:"column:position;not null" json:"position"`
	Period   string  `gorm:"column:period;not null;size:64" json:"period"`
	Credit   float64 `gorm:"column:credit;not null" json:"credit"`
	Debit    float64 `gorm:"column:debit;not null" json:"debit"`
}

func (PeriodFlow) TableName() string {
	return "client_record_periods"
}

// TotalCredit возвращает сумму кредитов за все периоды
func (r ClientRecord) TotalCredit() float64 {
	var total float64
	for _, p := range r.Periods {
		total += p.Credit
	}
	return total
}

// TotalDebit возвращает сумму дебетов за все периоды
func (r ClientRecord) TotalDebit() float64 {
	var total float64
	for _, p := range r.Periods {
		total += p.Debit
	}
	return total
}
