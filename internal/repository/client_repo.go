package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/andy/facturas/internal/db"
	"github.com/andy/facturas/internal/domain"
)

// ClientRepo is a database/sql implementation of ClientRepository
type ClientRepo struct {
	db *db.DB
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(database *db.DB) *ClientRepo {
	return &ClientRepo{db: database}
}

// List retrieves clients ordered by name, optionally filtered by name
func (r *ClientRepo) List(ctx context.Context, search string) ([]*domain.Client, error) {
	query := `
		SELECT NOMBRE, CIF, DIRECCION
		FROM Clientes
	`
	args := make([]interface{}, 0)

	var conds []string
	if strings.TrimSpace(search) != "" {
		conds = append(conds, "LOWER(NOMBRE) LIKE ?")
		args = append(args, containsPattern(search))
	}
	query += where(conds) + " ORDER BY NOMBRE"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client := &domain.Client{}
		var name sql.NullString

		if err := rows.Scan(&name, &client.TaxID, &client.Address); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		client.Name = name.String

		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}
