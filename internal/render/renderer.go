package render

import (
	"errors"
	"fmt"
	"os"

	"github.com/andy/facturas/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoHeader is returned when Render is called without an invoice header
var ErrNoHeader = errors.New("invoice header is required")

// Renderer lays an invoice out on fixed-size pages
type Renderer struct {
	layout  Layout
	company Company
	logo    string
	logger  *zap.Logger
}

// Option configures a Renderer
type Option func(*Renderer)

// WithLayout replaces the default page geometry
func WithLayout(l Layout) Option {
	return func(r *Renderer) { r.layout = l }
}

// WithCompany sets the letterhead
func WithCompany(c Company) Option {
	return func(r *Renderer) { r.company = c }
}

// WithLogo sets the logo image path. A missing file is skipped silently.
func WithLogo(path string) Option {
	return func(r *Renderer) { r.logo = path }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// New creates a Renderer with the default A4 layout
func New(opts ...Option) *Renderer {
	r := &Renderer{
		layout: DefaultLayout(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summary describes a finished document
type Summary struct {
	Pages     int
	Lines     int
	BaseTotal decimal.Decimal // sum of the line amounts
	Totals    Totals
}

// TaxRate returns the VAT rate used when the stored tax is absent
func (r *Renderer) TaxRate() decimal.Decimal {
	return r.layout.TaxRate
}

// Reconcile returns the line amount sum and the totals Render would print
func (r *Renderer) Reconcile(h *domain.InvoiceHeader, lines []*domain.InvoiceLine) (decimal.Decimal, Totals) {
	base := decimal.Zero
	for _, l := range lines {
		_, _, amount := LineAmounts(l)
		base = base.Add(amount)
	}
	return base, ResolveTotals(h, base, r.layout.TaxRate)
}

// renderState is the mutable part of one Render call
type renderState struct {
	s         Surface
	page      int
	y         float64
	fresh     bool // nothing but the continuation header on this page
	baseTotal decimal.Decimal

	left, right, top float64
}

// Render draws the invoice on s and finalizes it
func (r *Renderer) Render(s Surface, h *domain.InvoiceHeader, lines []*domain.InvoiceLine) (*Summary, error) {
	if h == nil {
		return nil, ErrNoHeader
	}

	width, height := s.PageSize()
	st := &renderState{
		s:         s,
		page:      1,
		left:      r.layout.MarginLeft,
		right:     width - r.layout.MarginRight,
		top:       height - r.layout.MarginTop,
		baseTotal: decimal.Zero,
	}
	st.y = st.top

	r.drawLogo(st)
	r.drawLetterhead(st)
	r.drawInvoiceInfo(st, h)
	r.drawTableHeader(st)

	for _, l := range lines {
		r.drawLine(st, l)
	}

	totals := ResolveTotals(h, st.baseTotal, r.layout.TaxRate)
	r.drawTotals(st, totals)

	if totals.Base.Source != SourceStored || totals.Tax.Source != SourceStored || totals.Total.Source != SourceStored {
		r.logger.Debug("invoice totals reconciled",
			zap.String("invoice", h.Number),
			zap.Stringer("base", totals.Base.Source),
			zap.Stringer("tax", totals.Tax.Source),
			zap.Stringer("total", totals.Total.Source),
		)
	}

	if err := s.Finalize(); err != nil {
		return nil, fmt.Errorf("failed to finalize document: %w", err)
	}

	return &Summary{
		Pages:     st.page,
		Lines:     len(lines),
		BaseTotal: st.baseTotal,
		Totals:    totals,
	}, nil
}

// drawLogo places the logo in the top right corner. The cursor moves the
// same amount whether or not an image was drawn.
func (r *Renderer) drawLogo(st *renderState) {
	size := r.layout.LogoSize
	if r.logo != "" {
		if _, err := os.Stat(r.logo); err == nil {
			err := st.s.DrawImage(r.logo, st.right-size, st.y-size+5*MM, size, size)
			if err != nil {
				r.logger.Warn("logo skipped", zap.String("path", r.logo), zap.Error(err))
			}
		}
	}
	st.y -= 5 * MM
}

func (r *Renderer) drawLetterhead(st *renderState) {
	c := r.company
	s := st.s

	if c.Name != "" {
		s.SetFont(fontCompany)
		s.DrawText(st.left, st.y, c.Name)
		st.y -= 5 * MM
	}

	s.SetFont(fontSmall)
	if c.Owner != "" {
		s.DrawText(st.left, st.y, c.Owner)
		st.y -= 5 * MM
	}
	for _, line := range c.Address {
		s.DrawText(st.left, st.y, line)
		st.y -= 4 * MM
	}
	if c.TaxID != "" {
		s.DrawText(st.left, st.y, labelCompanyTaxID+c.TaxID)
		st.y -= 4 * MM
	}
	st.y -= 6 * MM
}

func (r *Renderer) drawInvoiceInfo(st *renderState, h *domain.InvoiceHeader) {
	s := st.s

	s.SetFont(fontTitle)
	s.DrawText(st.left, st.y, labelTitle)
	st.y -= 10 * MM

	s.SetFont(fontText)
	s.DrawText(st.left, st.y, labelNumber+h.Number)
	s.DrawText(st.left+60*MM, st.y, labelDate+FormatDate(h.Date))
	st.y -= 8 * MM

	s.SetFont(fontLabel)
	s.DrawText(st.left, st.y, labelClient)
	st.y -= 5 * MM
	s.SetFont(fontText)
	s.DrawText(st.left, st.y, h.ClientName)
	st.y -= 5 * MM
	if h.ClientTaxID.Valid && h.ClientTaxID.String != "" {
		s.DrawText(st.left, st.y, labelTaxID+h.ClientTaxID.String)
		st.y -= 5 * MM
	}
	st.y -= 5 * MM
}

func (r *Renderer) drawTableHeader(st *renderState) {
	s := st.s

	s.SetFont(fontLabel)
	s.DrawText(st.left, st.y, labelCode)
	s.DrawText(st.left+r.layout.DescriptionOffset, st.y, labelDescription)
	s.DrawRightText(st.right-r.layout.QuantityOffset, st.y, labelQuantity)
	s.DrawRightText(st.right-r.layout.PriceOffset, st.y, labelPrice)
	s.DrawRightText(st.right, st.y, labelAmount)
	st.y -= 4 * MM
	s.DrawLine(st.left, st.y, st.right, st.y)
	st.y -= 6 * MM

	s.SetFont(fontRow)
}

// fits reports whether a block of the given height can start at the cursor
func (r *Renderer) fits(st *renderState, height float64) bool {
	return st.y-height >= r.layout.MarginBottom
}

// continuePage moves to a new page headed by the continuation label
func (r *Renderer) continuePage(st *renderState) {
	s := st.s
	s.NewPage()
	st.page++
	st.y = st.top

	s.SetFont(fontLabel)
	s.DrawText(st.left, st.y, ContinuationLabel)
	st.y -= 10 * MM
	st.fresh = true

	s.SetFont(fontRow)
}

func (r *Renderer) drawLine(st *renderState, l *domain.InvoiceLine) {
	s := st.s
	qty, price, amount := LineAmounts(l)
	st.baseTotal = st.baseTotal.Add(amount)

	descX := st.left + r.layout.DescriptionOffset
	descWidth := (st.right - r.layout.NumbersReserve) - descX
	desc := WrapText(l.Description.String, fontRow, descWidth, s)

	height := r.layout.RowHeight * float64(max(1, len(desc)))
	// A line taller than a whole page is drawn anyway rather than looping
	if !r.fits(st, height) && !st.fresh {
		r.continuePage(st)
	}
	st.fresh = false

	s.DrawText(st.left, st.y, truncateRunes(l.Code.String, r.layout.CodeMaxChars))
	s.DrawRightText(st.right-r.layout.QuantityOffset, st.y, FormatAmount(qty))
	s.DrawRightText(st.right-r.layout.PriceOffset, st.y, FormatAmount(price))
	s.DrawRightText(st.right, st.y, FormatAmount(amount))

	descY := st.y
	for _, line := range desc {
		s.DrawText(descX, descY, line)
		descY -= r.layout.RowHeight
	}
	st.y = descY - r.layout.RowGap
}

func (r *Renderer) drawTotals(st *renderState, t Totals) {
	const gap, step = 10 * MM, 6 * MM

	if !r.fits(st, gap+2*step) {
		r.continuePage(st)
	}
	st.y -= gap

	s := st.s
	s.SetFont(fontLabel)
	labelX := st.right - r.layout.PriceOffset

	rows := []struct {
		label string
		value decimal.Decimal
	}{
		{labelBase, t.Base.Value},
		{labelTax, t.Tax.Value},
		{labelTotal, t.Total.Value},
	}
	for i, row := range rows {
		if i > 0 {
			st.y -= step
		}
		s.DrawRightText(labelX, st.y, row.label)
		s.DrawRightText(st.right, st.y, FormatAmount(row.value))
	}
}
