package repository

import (
	"context"
	"errors"

	"github.com/andy/facturas/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ClientRepository reads the Clientes table
type ClientRepository interface {
	// List returns clients ordered by name whose name contains search
	// (case-insensitive). An empty search returns every client.
	List(ctx context.Context, search string) ([]*domain.Client, error)
}

// InvoiceRepository reads invoice headers (Facting) and lines (Contenid)
type InvoiceRepository interface {
	List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.InvoiceHeader, error)
	GetHeader(ctx context.Context, number string) (*domain.InvoiceHeader, error) // ErrNotFound if missing
	GetLines(ctx context.Context, number string) ([]*domain.InvoiceLine, error)  // store order
}

// WorkItemRepository searches invoice lines across all invoices
type WorkItemRepository interface {
	List(ctx context.Context, filter domain.WorkItemFilter) ([]*domain.WorkItem, error)
}
