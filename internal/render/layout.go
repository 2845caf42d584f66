package render

import "github.com/shopspring/decimal"

// MM is one millimetre in points
const MM = 72.0 / 25.4

// A4 page size in points
const (
	A4Width  = 210 * MM
	A4Height = 297 * MM
)

var (
	fontCompany = Font{Family: "Helvetica", Style: "B", Size: 12}
	fontSmall   = Font{Family: "Helvetica", Size: 9}
	fontTitle   = Font{Family: "Helvetica", Style: "B", Size: 16}
	fontText    = Font{Family: "Helvetica", Size: 10}
	fontLabel   = Font{Family: "Helvetica", Style: "B", Size: 10}
	fontRow     = Font{Family: "Helvetica", Size: 9}
)

// Document labels
const (
	labelTitle        = "FACTURA"
	labelNumber       = "Nº: "
	labelDate         = "Fecha: "
	labelClient       = "Cliente:"
	labelTaxID        = "CIF/NIF: "
	labelCompanyTaxID = "NIF: "
	labelCode         = "Código"
	labelDescription  = "Descripción"
	labelQuantity     = "Cantidad"
	labelPrice        = "Precio"
	labelAmount       = "Importe"
	labelBase         = "Base imponible:"
	labelTax          = "IVA:"
	labelTotal        = "TOTAL:"

	// ContinuationLabel heads every page after the first
	ContinuationLabel = "Continuación factura"
)

// Layout holds the page geometry. All lengths are in points.
type Layout struct {
	MarginLeft   float64
	MarginRight  float64 // distance from the right page edge
	MarginTop    float64
	MarginBottom float64 // rows never start below this line

	LogoSize float64

	RowHeight    float64 // height of one description line
	RowGap       float64 // extra space after each invoice line
	CodeMaxChars int

	DescriptionOffset float64 // description column, from the left margin
	NumbersReserve    float64 // space kept for numeric columns, from the right margin
	QuantityOffset    float64 // right edge of quantity, from the right margin
	PriceOffset       float64 // right edge of price, from the right margin

	TaxRate decimal.Decimal
}

// DefaultLayout returns the invoice geometry used for A4 output
func DefaultLayout() Layout {
	return Layout{
		MarginLeft:        20 * MM,
		MarginRight:       20 * MM,
		MarginTop:         20 * MM,
		MarginBottom:      30 * MM,
		LogoSize:          35 * MM,
		RowHeight:         5 * MM,
		RowGap:            2 * MM,
		CodeMaxChars:      10,
		DescriptionOffset: 25 * MM,
		NumbersReserve:    55 * MM,
		QuantityOffset:    50 * MM,
		PriceOffset:       30 * MM,
		TaxRate:           DefaultTaxRate,
	}
}

// Company is the letterhead printed at the top of the first page
type Company struct {
	Name    string
	Owner   string
	Address []string
	TaxID   string
}
