package service

import (
	"context"
	"testing"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/render"
)

func newReportRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{
		headers: []*domain.InvoiceHeader{
			{Number: "103", Date: domain.Null("2024-03-10"), ClientName: "ACME", Base: domain.Null("100"), Tax: domain.Null("21"), Total: domain.Null("121")},
			{Number: "102", Date: domain.Null("2024-03-02"), ClientName: "ACME Norte", Base: domain.Null("50"), Tax: domain.Null("10.50"), Total: domain.Null("60.50")},
			{Number: "101", Date: domain.Null("2024-01-15"), ClientName: "acme"},
			{Number: "100", Date: domain.Null("2023-12-20"), ClientName: "ACME", Base: domain.Null("10"), Tax: domain.Null("2.10"), Total: domain.Null("12.10")},
			{Number: "099", Date: domain.Null("sin fecha"), ClientName: "Bar Pepe"},
		},
		lines: map[string][]*domain.InvoiceLine{
			"101": {{Quantity: domain.Null("2"), Price: domain.Null("10")}},
		},
	}
}

func TestGetClientSummary(t *testing.T) {
	repo := newReportRepo()
	work := &mockWorkItemRepo{items: []*domain.WorkItem{
		{InvoiceNumber: "103", ClientName: "ACME"},
		{InvoiceNumber: "102", ClientName: "ACME Norte"},
		{InvoiceNumber: "101", ClientName: "acme"},
	}}
	svc := NewReportService(repo, work, render.New())

	summary, err := svc.GetClientSummary(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Invoices != 3 {
		t.Errorf("expected 3 invoices, got %d", summary.Invoices)
	}
	if summary.WorkItems != 2 {
		t.Errorf("expected 2 work items, got %d", summary.WorkItems)
	}
	// 121 + 24.20 (derived from lines) + 12.10
	if got := render.FormatAmount(summary.Billed); got != "157.30" {
		t.Errorf("billed = %s, want 157.30", got)
	}
	if summary.LastInvoice != "103" {
		t.Errorf("last invoice = %q, want 103", summary.LastInvoice)
	}
	if repo.lineCalls != 1 {
		t.Errorf("lines should only be loaded for invoices without stored totals, got %d calls", repo.lineCalls)
	}
}

func TestGetYearSummary(t *testing.T) {
	svc := NewReportService(newReportRepo(), &mockWorkItemRepo{}, render.New())

	summary, err := svc.GetYearSummary(context.Background(), 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Invoices != 3 {
		t.Errorf("expected 3 invoices, got %d", summary.Invoices)
	}
	if summary.Undated != 1 {
		t.Errorf("expected 1 undated invoice, got %d", summary.Undated)
	}
	if got := render.FormatAmount(summary.Total); got != "205.70" {
		t.Errorf("total = %s, want 205.70", got)
	}
	if got := render.FormatAmount(summary.Base); got != "170.00" {
		t.Errorf("base = %s, want 170.00", got)
	}
	if got := render.FormatAmount(summary.ByMonth[time.March]); got != "181.50" {
		t.Errorf("march = %s, want 181.50", got)
	}
	if got := render.FormatAmount(summary.ByMonth[time.January]); got != "24.20" {
		t.Errorf("january = %s, want 24.20", got)
	}
	if len(summary.ByMonth) != 12 {
		t.Errorf("expected all 12 months, got %d", len(summary.ByMonth))
	}
}
