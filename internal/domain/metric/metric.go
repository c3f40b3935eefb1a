// Package metric derives achievement and growth ratios from raw figures.
//
// Two zero-denominator conventions coexist. Aggregate ratios (cards, buckets)
// return nil when the denominator is zero. Period records produced by the
// parser use ParserGrowth, which falls back to 0.
package metric

import (
	"github.com/FACorreiaa/sales-dashboard/pkg/money"
)

// AchievementRate returns actual/target as an integer percent, or nil when
// target is zero.
func AchievementRate(actual, target float64) *float64 {
	return ratio(actual, target, 0)
}

// GrowthRate returns (current-baseline)/baseline as an integer percent, or nil
// when baseline is zero.
func GrowthRate(current, baseline float64) *float64 {
	if baseline == 0 {
		return nil
	}
	return ratio(current-baseline, baseline, 0)
}

// PeriodGrowth is GrowthRate rounded to one decimal, for monthly and weekly
// period comparisons.
func PeriodGrowth(current, baseline float64) *float64 {
	if baseline == 0 {
		return nil
	}
	return ratio(current-baseline, baseline, 1)
}

// AchievementRateFixed returns actual/target rounded to one decimal, or nil
// when target is zero.
func AchievementRateFixed(actual, target float64) *float64 {
	return ratio(actual, target, 1)
}

// ParserGrowth is the period-record growth rate: an integer percent when the
// prior year is positive, 0 otherwise.
func ParserGrowth(actual, prior float64) int {
	if prior <= 0 {
		return 0
	}
	return int(money.RoundInt((actual - prior) / prior * 100))
}

// ChangePercent compares the last two values of a series, rounded to one
// decimal. Series shorter than two, or a zero previous value, report 0.
func ChangePercent(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	last, prev := series[len(series)-1], series[len(series)-2]
	if prev == 0 {
		return 0
	}
	p := ratio(last-prev, prev, 1)
	return *p
}

// Band is a symmetric range around a forecast value
type Band struct {
	Lower float64 `json:"lowerBound"`
	Upper float64 `json:"upperBound"`
}

const bandWidth = 0.1

// ForecastBand returns the ±10% band around value
func ForecastBand(value float64) Band {
	return Band{
		Lower: value * (1 - bandWidth),
		Upper: value * (1 + bandWidth),
	}
}

func ratio(part, whole float64, places int32) *float64 {
	pct, ok := money.Percentage(part, whole)
	if !ok {
		return nil
	}

	f, _ := pct.Float64()
	var v float64
	if places == 0 {
		v = float64(money.RoundInt(f))
	} else {
		v = money.Round(f, places)
	}
	return &v
}
