package render

import (
	"database/sql"
	"strings"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/shopspring/decimal"
)

// valueState classifies a raw stored value
type valueState int

const (
	valueMissing valueState = iota
	valueOK
	valueInvalid
)

// dateLayouts are tried in order when formatting a stored date
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// parseDecimal reads a raw stored number. Blank values count as missing.
// A comma is accepted as decimal separator when no dot is present.
func parseDecimal(v sql.NullString) (decimal.Decimal, valueState) {
	if !v.Valid {
		return decimal.Zero, valueMissing
	}
	s := strings.TrimSpace(v.String)
	if s == "" {
		return decimal.Zero, valueMissing
	}
	d, err := decimal.NewFromString(s)
	if err == nil {
		return d, valueOK
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		if d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1)); err == nil {
			return d, valueOK
		}
	}
	return decimal.Zero, valueInvalid
}

// decimalOrZero returns the parsed value, or zero when it is missing or invalid
func decimalOrZero(v sql.NullString) decimal.Decimal {
	d, _ := parseDecimal(v)
	return d
}

// LineAmounts returns the quantity, unit price and amount of a line.
// Missing or unparseable quantity and price count as zero. A usable
// precomputed amount is preferred, otherwise quantity*price is used; either
// way the amount is rounded to cents.
func LineAmounts(l *domain.InvoiceLine) (qty, price, amount decimal.Decimal) {
	qty = decimalOrZero(l.Quantity)
	price = decimalOrZero(l.Price)
	if a, state := parseDecimal(l.Amount); state == valueOK {
		return qty, price, a.Round(2)
	}
	return qty, price, qty.Mul(price).Round(2)
}

// FormatAmount prints a number with exactly two decimals
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDate prints a stored date as day/month/year. Values that are not a
// recognised date are printed as stored; absent values print empty.
func FormatDate(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	if t, ok := ParseDate(v); ok {
		return t.Format("02/01/2006")
	}
	return v.String
}

// ParseDate reads a stored date in any of the layouts the database drivers
// produce
func ParseDate(v sql.NullString) (time.Time, bool) {
	if !v.Valid {
		return time.Time{}, false
	}
	s := strings.TrimSpace(v.String)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// truncateRunes cuts s to at most n characters
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
