package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/facturas/internal/db"
	"github.com/andy/facturas/internal/domain"
)

const invoiceColumns = `NUMERO, FECHA, CLIENTE, CIF, TOTAL, BASE1, IVA1`

// InvoiceRepo is a database/sql implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

// List retrieves invoices newest first. The client filter matches a
// substring of the client name; the number filter must match exactly.
func (r *InvoiceRepo) List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.InvoiceHeader, error) {
	query := `SELECT ` + invoiceColumns + ` FROM Facting`
	args := make([]interface{}, 0)

	var conds []string
	if strings.TrimSpace(filter.Client) != "" {
		conds = append(conds, "LOWER(CLIENTE) LIKE ?")
		args = append(args, containsPattern(filter.Client))
	}
	if number := domain.NormalizeNumber(filter.Number); number != "" {
		conds = append(conds, "NUMERO = ?")
		args = append(args, number)
	}
	query += where(conds) + " ORDER BY FECHA DESC"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.InvoiceHeader, 0)
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// GetHeader retrieves a single invoice header by number
func (r *InvoiceRepo) GetHeader(ctx context.Context, number string) (*domain.InvoiceHeader, error) {
	number = domain.NormalizeNumber(number)
	query := `SELECT ` + invoiceColumns + ` FROM Facting WHERE NUMERO = ?`

	h, err := scanHeader(r.db.QueryRowContext(ctx, r.db.Rebind(query), number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", number, ErrNotFound)
		}
		return nil, err
	}

	return h, nil
}

// GetLines retrieves the lines of an invoice in store order. Amount is left
// absent: the database would multiply the raw text columns, so it is derived
// from the parsed quantity and price instead.
func (r *InvoiceRepo) GetLines(ctx context.Context, number string) ([]*domain.InvoiceLine, error) {
	query := `
		SELECT Codigo, Datos, CANTIDAD, PRECIO
		FROM Contenid
		WHERE REFERENCIA = ?
	`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), domain.NormalizeNumber(number))
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice lines: %w", err)
	}
	defer rows.Close()

	lines := make([]*domain.InvoiceLine, 0)
	for rows.Next() {
		l := &domain.InvoiceLine{}
		err := rows.Scan(
			&l.Code,
			&l.Description,
			&l.Quantity,
			&l.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice lines: %w", err)
	}

	return lines, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanHeader(row scanner) (*domain.InvoiceHeader, error) {
	h := &domain.InvoiceHeader{}
	var number, client sql.NullString

	err := row.Scan(
		&number,
		&h.Date,
		&client,
		&h.ClientTaxID,
		&h.Total,
		&h.Base,
		&h.Tax,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	h.Number = domain.NormalizeNumber(number.String)
	h.ClientName = client.String
	return h, nil
}
