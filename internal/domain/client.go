package domain

import (
	"database/sql"
	"strings"
)

// Client is a row of the legacy Clientes table
type Client struct {
	Name    string
	TaxID   sql.NullString
	Address sql.NullString
}

// MatchesName reports whether the client name contains the search text, ignoring case
func (c *Client) MatchesName(search string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), strings.ToLower(search))
}
