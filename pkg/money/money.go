// Package money provides currency-safe rounding and formatting for report
// figures. Spreadsheet amounts arrive as float64; everything that is shown to a
// user goes through shopspring/decimal so that half-way values round the same
// way on every platform, and through go-money for currency display.
package money

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	KRW = "KRW" // South Korean Won (no decimal places)
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	JPY = "JPY" // Japanese Yen (no decimal places)
)

var (
	// krwFormatter renders won amounts as "₩1,234,500".
	krwFormatter = money.NewFormatter(0, ".", ",", "₩", "$1")

	half = decimal.NewFromFloat(0.5)
)

// Money represents a monetary value with currency.
// It wraps go-money for safe arithmetic and shopspring/decimal for precision calculations.
type Money struct {
	m *money.Money
}

// New creates a new Money value from minor units and currency code.
// For KRW and other zero-decimal currencies, amount is the actual value.
func New(amount int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amount, currencyCode),
	}
}

// NewFromFloat creates Money from a floating-point spreadsheet value,
// rounding half away from zero to the currency's minor unit.
func NewFromFloat(amount float64, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(KRW)
		currencyCode = KRW
	}

	d := decimal.NewFromFloat(amount)
	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := d.Mul(multiplier).Round(0).IntPart()

	return New(minor, currencyCode)
}

// Won is shorthand for NewFromFloat(amount, KRW).
func Won(amount float64) *Money {
	return NewFromFloat(amount, KRW)
}

// Amount returns the amount in minor units
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Display returns a formatted string for display (e.g., "₩1,234,500")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	if m.Currency() == KRW {
		return krwFormatter.Format(m.m.Amount())
	}
	return m.m.Display()
}

// FormatKRW formats a raw spreadsheet amount as won.
func FormatKRW(amount float64) string {
	return Won(amount).Display()
}

// ============================================================================
// Rounding helpers for report percentages and totals
// ============================================================================

// RoundInt rounds to the nearest integer with ties toward positive infinity
// (10.5 -> 11, -10.5 -> -10).
func RoundInt(v float64) int64 {
	return decimal.NewFromFloat(v).Add(half).Floor().IntPart()
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// FormatFixed renders v with exactly `places` decimals ("12.0", "-3.5").
func FormatFixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Percentage returns part/whole*100 as a decimal, or false when whole is zero.
func Percentage(part, whole float64) (decimal.Decimal, bool) {
	if whole == 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(part).Div(decimal.NewFromFloat(whole)).Mul(decimal.NewFromInt(100)), true
}

// Eok formats an amount in units of 억 (100,000,000 won), rounded.
func Eok(amount float64) string {
	eok := RoundInt(amount / 100_000_000)
	var b strings.Builder
	b.WriteString(decimal.NewFromInt(eok).String())
	b.WriteString("억")
	return b.String()
}
