package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/mail"
	"github.com/andy/facturas/internal/pdf"
	"github.com/andy/facturas/internal/render"
	"github.com/andy/facturas/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrNoRecipient     = errors.New("recipient address is required")
)

// InvoiceDetail is an invoice with its lines and reconciled totals
type InvoiceDetail struct {
	Header    *domain.InvoiceHeader
	Lines     []*domain.InvoiceLine
	BaseTotal decimal.Decimal // sum of the line amounts
	Totals    render.Totals
}

// InvoiceService queries invoices and renders them
type InvoiceService interface {
	// ListInvoices lists invoice headers, newest first
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.InvoiceHeader, error)

	// GetInvoice loads an invoice with its lines
	GetInvoice(ctx context.Context, number string) (*InvoiceDetail, error)

	// ExportPDF renders an invoice to path. An empty path writes
	// Factura_<number>.pdf into the output directory.
	ExportPDF(ctx context.Context, number, path string) (string, *render.Summary, error)

	// PreviewPages renders an invoice in memory and returns its page count
	PreviewPages(ctx context.Context, number string) (int, error)

	// SendInvoice renders an invoice and mails it to the given address
	SendInvoice(ctx context.Context, number, to string) error

	// DefaultPDFPath returns where ExportPDF writes when no path is given
	DefaultPDFPath(number string) string
}

// SurfaceFactory opens a drawing surface that is written to path
type SurfaceFactory func(path, title string) render.Surface

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	renderer    *render.Renderer
	mailer      mail.Mailer
	logger      *zap.Logger

	outputDir  string
	newSurface SurfaceFactory
	measurer   render.Measurer
}

// NewInvoiceService creates a new invoice service writing PDFs into outputDir
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	renderer *render.Renderer,
	mailer mail.Mailer,
	outputDir string,
	logger *zap.Logger,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		renderer:    renderer,
		mailer:      mailer,
		logger:      logger,
		outputDir:   outputDir,
		newSurface: func(path, title string) render.Surface {
			return pdf.NewFile(path, pdf.WithTitle(title))
		},
		measurer: pdf.NewMeasurer(),
	}
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.InvoiceHeader, error) {
	return s.invoiceRepo.List(ctx, filter)
}

func (s *invoiceService) GetInvoice(ctx context.Context, number string) (*InvoiceDetail, error) {
	number = domain.NormalizeNumber(number)
	if number == "" {
		return nil, fmt.Errorf("%w: empty invoice number", ErrInvoiceNotFound)
	}

	header, err := s.invoiceRepo.GetHeader(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvoiceNotFound, err)
		}
		return nil, err
	}

	lines, err := s.invoiceRepo.GetLines(ctx, number)
	if err != nil {
		return nil, err
	}

	base, totals := s.renderer.Reconcile(header, lines)
	return &InvoiceDetail{
		Header:    header,
		Lines:     lines,
		BaseTotal: base,
		Totals:    totals,
	}, nil
}

func (s *invoiceService) ExportPDF(ctx context.Context, number, path string) (string, *render.Summary, error) {
	// Load everything before a file is created so a missing invoice leaves
	// nothing on disk
	detail, err := s.GetInvoice(ctx, number)
	if err != nil {
		return "", nil, err
	}

	if path == "" {
		path = s.DefaultPDFPath(detail.Header.Number)
	}

	surface := s.newSurface(path, "Factura "+detail.Header.Number)
	summary, err := s.renderer.Render(surface, detail.Header, detail.Lines)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render invoice %s: %w", detail.Header.Number, err)
	}

	s.logger.Info("invoice exported",
		zap.String("invoice", detail.Header.Number),
		zap.String("path", path),
		zap.Int("pages", summary.Pages),
		zap.Int("lines", summary.Lines),
	)

	return path, summary, nil
}

func (s *invoiceService) PreviewPages(ctx context.Context, number string) (int, error) {
	detail, err := s.GetInvoice(ctx, number)
	if err != nil {
		return 0, err
	}

	rec := render.NewRecorder(s.measurer, render.A4Width, render.A4Height)
	summary, err := s.renderer.Render(rec, detail.Header, detail.Lines)
	if err != nil {
		return 0, err
	}
	return summary.Pages, nil
}

func (s *invoiceService) SendInvoice(ctx context.Context, number, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}

	dir, err := os.MkdirTemp("", "facturas-mail-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	number = domain.NormalizeNumber(number)
	path, _, err := s.ExportPDF(ctx, number, filepath.Join(dir, pdfFileName(number)))
	if err != nil {
		return err
	}

	msg := &mail.Message{
		To:          to,
		Subject:     "Factura " + number,
		Body:        fmt.Sprintf("Adjuntamos la factura %s.<br>", number),
		Attachments: []string{path},
	}
	if err := s.mailer.Send(msg); err != nil {
		return err
	}

	s.logger.Info("invoice sent", zap.String("invoice", number), zap.String("to", to))
	return nil
}

func (s *invoiceService) DefaultPDFPath(number string) string {
	return filepath.Join(s.outputDir, pdfFileName(domain.NormalizeNumber(number)))
}

// pdfFileName returns Factura_<number>.pdf with path separators replaced
func pdfFileName(number string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, number)
	return "Factura_" + safe + ".pdf"
}
