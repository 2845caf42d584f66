package domain

import "database/sql"

// WorkItem is an invoice line joined with its invoice header, used to
// search past work across all invoices
type WorkItem struct {
	Date          sql.NullString
	InvoiceNumber string
	ClientName    string
	Description   sql.NullString
	Quantity      sql.NullString
	Price         sql.NullString
	Amount        sql.NullString
}

// WorkItemFilter narrows a work item search. Empty fields are ignored.
type WorkItemFilter struct {
	Client string // substring of the client name
	Text   string // substring of the line description
}
