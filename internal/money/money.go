// Package money holds the decimal helpers shared by the calculator and the ledger.
package money

import (
	"bytes"
	"encoding/json"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencySymbol is printed in front of formatted amounts (colón).
const CurrencySymbol = "₡"

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Percent returns value * pct / 100.
func Percent(value, pct decimal.Decimal) decimal.Decimal {
	return value.Mul(pct).Div(hundred)
}

// Grow returns value * (1 + pct/100).
func Grow(value, pct decimal.Decimal) decimal.Decimal {
	return value.Add(Percent(value, pct))
}

// GramsToKg converts grams to kilograms.
func GramsToKg(grams decimal.Decimal) decimal.Decimal {
	return grams.Div(thousand)
}

// MinutesToHours converts minutes to hours.
func MinutesToHours(minutes decimal.Decimal) decimal.Decimal {
	return minutes.Div(decimal.NewFromInt(60))
}

// Lenient parses a JSON number or numeric string, returning zero for anything
// else (null, empty string, garbage).
func Lenient(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.NullDecimal
	if err := json.Unmarshal(raw, &d); err != nil || !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// Round rounds to two decimal places for display and totals.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount with the currency symbol and thousands grouping,
// e.g. 1776.6006 -> "₡1,776.60".
func Format(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return CurrencySymbol + humanize.FormatFloat("#,###.##", f)
}

// FormatKg renders a weight in kilograms with two decimals, e.g. "0.50 kg".
func FormatKg(kg decimal.Decimal) string {
	return kg.StringFixed(2) + " kg"
}
