package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/andy/facturas/internal/db"
	"github.com/andy/facturas/internal/domain"
)

// WorkItemRepo is a database/sql implementation of WorkItemRepository
type WorkItemRepo struct {
	db *db.DB
}

// NewWorkItemRepo creates a new WorkItemRepo
func NewWorkItemRepo(database *db.DB) *WorkItemRepo {
	return &WorkItemRepo{db: database}
}

// List retrieves invoice lines joined with their invoice, newest first.
// Amount is left absent, as in InvoiceRepo.GetLines.
func (r *WorkItemRepo) List(ctx context.Context, filter domain.WorkItemFilter) ([]*domain.WorkItem, error) {
	query := `
		SELECT f.FECHA, c.REFERENCIA, f.CLIENTE, c.Datos,
		       c.CANTIDAD, c.PRECIO
		FROM Contenid c
		INNER JOIN Facting f ON c.REFERENCIA = f.NUMERO
	`
	args := make([]interface{}, 0)

	var conds []string
	if strings.TrimSpace(filter.Client) != "" {
		conds = append(conds, "LOWER(f.CLIENTE) LIKE ?")
		args = append(args, containsPattern(filter.Client))
	}
	if strings.TrimSpace(filter.Text) != "" {
		conds = append(conds, "LOWER(c.Datos) LIKE ?")
		args = append(args, containsPattern(filter.Text))
	}
	query += where(conds) + " ORDER BY f.FECHA DESC"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.WorkItem, 0)
	for rows.Next() {
		item := &domain.WorkItem{}
		var number, client sql.NullString

		err := rows.Scan(
			&item.Date,
			&number,
			&client,
			&item.Description,
			&item.Quantity,
			&item.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}

		item.InvoiceNumber = domain.NormalizeNumber(number.String)
		item.ClientName = client.String
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work items: %w", err)
	}

	return items, nil
}
