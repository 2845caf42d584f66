package render

import (
	"database/sql"

	"github.com/andy/facturas/internal/domain"
	"github.com/shopspring/decimal"
)

// Source tells where a resolved amount came from
type Source int

const (
	SourceStored   Source = iota // stored value used as is
	SourceDerived                // stored value absent, computed
	SourceFallback               // stored value unparseable, replaced
)

func (s Source) String() string {
	switch s {
	case SourceStored:
		return "stored"
	case SourceDerived:
		return "derived"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Amount is a resolved money value
type Amount struct {
	Value  decimal.Decimal
	Source Source
}

// Totals is the reconciled totals block of an invoice
type Totals struct {
	Base  Amount
	Tax   Amount
	Total Amount
}

// DefaultTaxRate is the VAT rate applied when the stored tax is absent
var DefaultTaxRate = decimal.RequireFromString("0.21")

// resolution is one row of the totals table: the stored value, what to use
// when it is absent and what to use when it cannot be parsed
type resolution struct {
	stored    sql.NullString
	onMissing func() decimal.Decimal
	onInvalid func() decimal.Decimal
}

func (r resolution) resolve() Amount {
	d, state := parseDecimal(r.stored)
	switch state {
	case valueOK:
		return Amount{Value: d, Source: SourceStored}
	case valueMissing:
		return Amount{Value: r.onMissing(), Source: SourceDerived}
	default:
		return Amount{Value: r.onInvalid(), Source: SourceFallback}
	}
}

// ResolveTotals reconciles the stored totals of an invoice with the sum of
// its line amounts. Base falls back to baseTotal, tax to base*taxRate and
// total to base+tax. An unparseable stored tax becomes zero.
func ResolveTotals(h *domain.InvoiceHeader, baseTotal, taxRate decimal.Decimal) Totals {
	var t Totals

	t.Base = resolution{
		stored:    h.Base,
		onMissing: func() decimal.Decimal { return baseTotal },
		onInvalid: func() decimal.Decimal { return baseTotal },
	}.resolve()

	t.Tax = resolution{
		stored:    h.Tax,
		onMissing: func() decimal.Decimal { return t.Base.Value.Mul(taxRate).Round(2) },
		onInvalid: func() decimal.Decimal { return decimal.Zero },
	}.resolve()

	sum := func() decimal.Decimal { return t.Base.Value.Add(t.Tax.Value).Round(2) }
	t.Total = resolution{
		stored:    h.Total,
		onMissing: sum,
		onInvalid: sum,
	}.resolve()

	return t
}
