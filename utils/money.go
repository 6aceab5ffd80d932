package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// maxExactFraction - начиная с 2^53 у float64 нет дробной части
const maxExactFraction = 1 << 53

// RoundTo2Decimals округляет значение до 2 знаков после запятой.
// NaN, бесконечности и значения без дробной части возвращаются без изменений.
func RoundTo2Decimals(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || math.Abs(value) >= maxExactFraction {
		return value
	}
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// Saturate заменяет NaN нулем, а бесконечности - ближайшим конечным float64
func Saturate(value float64) float64 {
	switch {
	case math.IsNaN(value):
		return 0
	case math.IsInf(value, 1):
		return math.MaxFloat64
	case math.IsInf(value, -1):
		return -math.MaxFloat64
	default:
		return value
	}
}

// Clamp ограничивает значение отрезком [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
