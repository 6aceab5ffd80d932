package services

import (
	"math"

	"ecopredict/models"
	"ecopredict/utils"
)

// ZeroRatePolicy определяет расчет при нулевой процентной ставке
type ZeroRatePolicy string

const (
	// ZeroRateNoPayment - платеж и максимальный кредит равны 0
	ZeroRateNoPayment ZeroRatePolicy = "no_payment"
	// ZeroRateInterestFree - беспроцентная рассрочка: amount / term
	ZeroRateInterestFree ZeroRatePolicy = "interest_free"
)

const (
	DefaultDebtToIncomeRatio = 0.4

	highSolvencyMaxRatio   = 60.0
	mediumSolvencyMaxRatio = 80.0
	lowSolvencyMaxRatio    = 100.0
)

// SolvencyPolicy содержит параметры политики расчета
type SolvencyPolicy struct {
	DebtToIncomeRatio float64
	ZeroRatePolicy    ZeroRatePolicy
}

// DefaultSolvencyPolicy возвращает политику по умолчанию: 40% дохода, нулевая ставка - без платежа
func DefaultSolvencyPolicy() SolvencyPolicy {
	return SolvencyPolicy{
		DebtToIncomeRatio: DefaultDebtToIncomeRatio,
		ZeroRatePolicy:    ZeroRateNoPayment,
	}
}

// SolvencyEngine рассчитывает платежеспособность клиента.
// Не выполняет ввода-вывода и не хранит состояния между вызовами.
type SolvencyEngine struct {
	policy SolvencyPolicy
}

// NewSolvencyEngine создает новый экземпляр SolvencyEngine
func NewSolvencyEngine(policy SolvencyPolicy) *SolvencyEngine {
	if policy.DebtToIncomeRatio <= 0 {
		policy.DebtToIncomeRatio = DefaultDebtToIncomeRatio
	}
	if policy.ZeroRatePolicy == "" {
		policy.ZeroRatePolicy = ZeroRateNoPayment
	}
	return &SolvencyEngine{policy: policy}
}

// Policy возвращает действующую политику расчета
func (e *SolvencyEngine) Policy() SolvencyPolicy {
	return e.policy
}

// solvencyFigures - промежуточные значения расчета без округления
type solvencyFigures struct {
	netCashFlow          float64
	monthlyIncome        float64
	maxMonthlyPayment    float64
	monthlyPayment       float64
	maxAffordableLoan    float64
	solvencyRatio        float64
	repaymentProbability float64
	probabilityDefined   bool
}

// Evaluate рассчитывает результат для одной записи клиента
func (e *SolvencyEngine) Evaluate(record models.ClientRecord, req models.SolvencyRequest) models.SolvencyResult {
	f := e.compute(record, req)

	result := models.SolvencyResult{
		ClientID:               record.AccountID,
		RequestedAmount:        utils.RoundTo2Decimals(utils.Saturate(req.RequestedAmount)),
		EstimatedMonthlyIncome: utils.RoundTo2Decimals(f.monthlyIncome),
		MaxMonthlyPayment:      utils.RoundTo2Decimals(f.maxMonthlyPayment),
		MonthlyPayment:         utils.RoundTo2Decimals(f.monthlyPayment),
		MaxAffordableLoan:      utils.RoundTo2Decimals(f.maxAffordableLoan),
		OptimalLoan:            utils.RoundTo2Decimals(math.Max(f.maxAffordableLoan, 0)),
		SolvencyRatioPct:       utils.RoundTo2Decimals(f.solvencyRatio),
		SolvencyTier:           ClassifySolvency(f.solvencyRatio),
		NetCashFlow:            utils.RoundTo2Decimals(f.netCashFlow),
	}

	if f.probabilityDefined {
		// Ограничиваем вероятность после округления
		p := utils.Clamp(utils.RoundTo2Decimals(f.repaymentProbability), 0, 100)
		result.RepaymentProbabilityPct = &p
	}

	return result
}

func (e *SolvencyEngine) compute(record models.ClientRecord, req models.SolvencyRequest) solvencyFigures {
	var f solvencyFigures

	// Денежный поток и оценка дохода как среднего кредита за период
	totalCredit := record.TotalCredit()
	f.netCashFlow = utils.Saturate(totalCredit - record.TotalDebit())
	if n := len(record.Periods); n > 0 {
		f.monthlyIncome = utils.Saturate(totalCredit / float64(n))
	}

	f.maxMonthlyPayment = utils.Saturate(f.monthlyIncome * e.policy.DebtToIncomeRatio)
	f.monthlyPayment = utils.Saturate(e.monthlyPayment(req.RequestedAmount, req.AnnualRate, req.TermMonths))

	if f.maxMonthlyPayment > 0 {
		f.maxAffordableLoan = utils.Saturate(e.maxAffordableLoan(f.maxMonthlyPayment, req.AnnualRate, req.TermMonths))
	}

	// Переполнение дает предельное конечное значение, а не ±Inf
	if f.maxAffordableLoan > 0 {
		f.solvencyRatio = utils.Saturate(req.RequestedAmount / f.maxAffordableLoan * 100)
	}

	if f.monthlyIncome > 0 {
		f.repaymentProbability = utils.Saturate((1 - f.monthlyPayment/f.monthlyIncome) * 100)
		f.probabilityDefined = true
	}

	return f
}

// monthlyPayment рассчитывает аннуитетный платеж
func (e *SolvencyEngine) monthlyPayment(amount, annualRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	if annualRate == 0 {
		if e.policy.ZeroRatePolicy == ZeroRateInterestFree {
			return amount / float64(months)
		}
		return 0
	}

	monthlyRate := annualRate / 12
	factor := 1 - math.Pow(1+monthlyRate, -float64(months))
	if factor == 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return 0
	}
	return amount * (monthlyRate / factor)
}

// maxAffordableLoan рассчитывает максимальную сумму кредита по допустимому платежу
func (e *SolvencyEngine) maxAffordableLoan(maxPayment, annualRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	if annualRate == 0 {
		if e.policy.ZeroRatePolicy == ZeroRateInterestFree {
			return maxPayment * float64(months)
		}
		return 0
	}

	monthlyRate := annualRate / 12
	loan := maxPayment * (1 - math.Pow(1+monthlyRate, -float64(months))) / monthlyRate
	if math.IsNaN(loan) || math.IsInf(loan, 0) {
		return 0
	}
	return loan
}

// ClassifySolvency определяет категорию по отношению запрошенной суммы к максимальной (в %).
// Граница включается в более высокую категорию.
func ClassifySolvency(ratio float64) models.SolvencyTier {
	switch {
	case ratio <= highSolvencyMaxRatio:
		return models.SolvencyTierHigh
	case ratio <= mediumSolvencyMaxRatio:
		return models.SolvencyTierMedium
	case ratio <= lowSolvencyMaxRatio:
		return models.SolvencyTierLow
	default:
		return models.SolvencyTierNotSolvent
	}
}
