package domain

import (
	"database/sql"
	"strings"
)

// InvoiceHeader is an invoice as stored in the legacy Facting table.
// Money and date columns are kept raw so that an absent value can be told
// apart from one that is present but cannot be parsed.
type InvoiceHeader struct {
	Number      string
	Date        sql.NullString
	ClientName  string
	ClientTaxID sql.NullString
	Base        sql.NullString
	Tax         sql.NullString
	Total       sql.NullString
}

// InvoiceLine is one billed unit of an invoice (legacy Contenid table)
type InvoiceLine struct {
	Code        sql.NullString
	Description sql.NullString
	Quantity    sql.NullString
	Price       sql.NullString
	Amount      sql.NullString // precomputed, may be absent
}

// InvoiceFilter narrows an invoice listing. Empty fields are ignored.
type InvoiceFilter struct {
	Client string // substring of the client name
	Number string // exact invoice number
}

// NormalizeNumber turns an invoice identifier into its stored string form
func NormalizeNumber(number string) string {
	return strings.TrimSpace(number)
}

// Null builds a present raw value
func Null(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
