package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/render"
	"github.com/andy/facturas/internal/repository"
	"github.com/shopspring/decimal"
)

// ClientSummary describes the billing history of one client
type ClientSummary struct {
	ClientName  string
	Invoices    int
	WorkItems   int
	Billed      decimal.Decimal // sum of reconciled invoice totals
	LastInvoice string
	LastDate    sql.NullString
}

// YearSummary aggregates the invoices dated in one year
type YearSummary struct {
	Year     int
	Invoices int
	Base     decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	ByMonth  map[time.Month]decimal.Decimal // totals per month
	Undated  int                            // invoices whose date cannot be read
}

// ReportService provides aggregations over the invoice history
type ReportService interface {
	GetClientSummary(ctx context.Context, clientName string) (*ClientSummary, error)
	GetYearSummary(ctx context.Context, year int) (*YearSummary, error)
}

type reportService struct {
	invoiceRepo  repository.InvoiceRepository
	workItemRepo repository.WorkItemRepository
	renderer     *render.Renderer
}

// NewReportService creates a new report service
func NewReportService(
	invoiceRepo repository.InvoiceRepository,
	workItemRepo repository.WorkItemRepository,
	renderer *render.Renderer,
) ReportService {
	return &reportService{
		invoiceRepo:  invoiceRepo,
		workItemRepo: workItemRepo,
		renderer:     renderer,
	}
}

func (s *reportService) GetClientSummary(ctx context.Context, clientName string) (*ClientSummary, error) {
	clientName = strings.TrimSpace(clientName)

	// The store matches substrings; keep only this client's rows
	invoices, err := s.invoiceRepo.List(ctx, domain.InvoiceFilter{Client: clientName})
	if err != nil {
		return nil, err
	}
	items, err := s.workItemRepo.List(ctx, domain.WorkItemFilter{Client: clientName})
	if err != nil {
		return nil, err
	}

	summary := &ClientSummary{
		ClientName: clientName,
		Billed:     decimal.Zero,
	}

	// invoices come newest first
	for _, h := range invoices {
		if !strings.EqualFold(h.ClientName, clientName) {
			continue
		}
		totals, err := s.invoiceTotals(ctx, h)
		if err != nil {
			return nil, err
		}

		if summary.Invoices == 0 {
			summary.LastInvoice = h.Number
			summary.LastDate = h.Date
		}
		summary.Invoices++
		summary.Billed = summary.Billed.Add(totals.Total.Value)
	}

	for _, item := range items {
		if strings.EqualFold(item.ClientName, clientName) {
			summary.WorkItems++
		}
	}

	return summary, nil
}

func (s *reportService) GetYearSummary(ctx context.Context, year int) (*YearSummary, error) {
	invoices, err := s.invoiceRepo.List(ctx, domain.InvoiceFilter{})
	if err != nil {
		return nil, err
	}

	summary := &YearSummary{
		Year:    year,
		Base:    decimal.Zero,
		Tax:     decimal.Zero,
		Total:   decimal.Zero,
		ByMonth: make(map[time.Month]decimal.Decimal),
	}

	// Initialize all months to 0
	for m := time.January; m <= time.December; m++ {
		summary.ByMonth[m] = decimal.Zero
	}

	for _, h := range invoices {
		date, ok := render.ParseDate(h.Date)
		if !ok {
			summary.Undated++
			continue
		}
		if date.Year() != year {
			continue
		}

		totals, err := s.invoiceTotals(ctx, h)
		if err != nil {
			return nil, err
		}

		summary.Invoices++
		summary.Base = summary.Base.Add(totals.Base.Value)
		summary.Tax = summary.Tax.Add(totals.Tax.Value)
		summary.Total = summary.Total.Add(totals.Total.Value)
		summary.ByMonth[date.Month()] = summary.ByMonth[date.Month()].Add(totals.Total.Value)
	}

	return summary, nil
}

// invoiceTotals reconciles an invoice, loading its lines only when a stored
// total cannot be used as is
func (s *reportService) invoiceTotals(ctx context.Context, h *domain.InvoiceHeader) (render.Totals, error) {
	totals := render.ResolveTotals(h, decimal.Zero, s.renderer.TaxRate())
	if totals.Base.Source == render.SourceStored &&
		totals.Tax.Source == render.SourceStored &&
		totals.Total.Source == render.SourceStored {
		return totals, nil
	}

	lines, err := s.invoiceRepo.GetLines(ctx, h.Number)
	if err != nil {
		return render.Totals{}, err
	}
	_, totals = s.renderer.Reconcile(h, lines)
	return totals, nil
}
