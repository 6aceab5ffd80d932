package models

// SolvencyTier представляет категорию платежеспособности клиента
type SolvencyTier string

const (
	SolvencyTierHigh       SolvencyTier = "HighSolvency"
	SolvencyTierMedium     SolvencyTier = "MediumSolvency"
	SolvencyTierLow        SolvencyTier = "LowSolvency"
	SolvencyTierNotSolvent SolvencyTier = "NotSolvent"
)

// SolvencyRequest представляет параметры запрашиваемого кредита
type SolvencyRequest struct {
	ClientID        string  `json:"client_id" yaml:"client_id" validate:"required"`
	RequestedAmount float64 `json:"requested_amount" yaml:"requested_amount" validate:"finite"`
	AnnualRate      float64 `json:"annual_rate" yaml:"annual_rate" validate:"finite"`
	TermMonths      int     `json:"term_months" yaml:"term_months" validate:"gt=0"`
}

// SolvencyResult представляет результат оценки одной записи клиента.
// Все денежные и процентные поля округлены до 2 знаков.
type SolvencyResult struct {
	ClientID               string       `json:"client_id" yaml:"client_id"`
	RequestedAmount        float64      `json:"requested_amount" yaml:"requested_amount"`
	EstimatedMonthlyIncome float64      `json:"estimated_monthly_income" yaml:"estimated_monthly_income"`
	MaxMonthlyPayment      float64      `json:"max_monthly_payment" yaml:"max_monthly_payment"`
	MonthlyPayment         float64      `json:"monthly_payment" yaml:"monthly_payment"`
	MaxAffordableLoan      float64      `json:"max_affordable_loan" yaml:"max_affordable_loan"`
	OptimalLoan            float64      `json:"optimal_loan" yaml:"optimal_loan"`
	SolvencyRatioPct       float64      `json:"solvency_ratio_pct" yaml:"solvency_ratio_pct"`
	SolvencyTier           SolvencyTier `json:"solvency_tier" yaml:"solvency_tier"`
	// nil, если доход равен нулю и вероятность не определена
	RepaymentProbabilityPct *float64 `json:"repayment_probability_pct" yaml:"repayment_probability_pct"`
	NetCashFlow             float64  `json:"net_cash_flow" yaml:"net_cash_flow"`
}
