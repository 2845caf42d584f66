package tui

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// ShowClientInvoicesMsg opens the invoices screen filtered by client
type ShowClientInvoicesMsg struct {
	Client string
}

// ShowClientWorkMsg opens the work items screen filtered by client
type ShowClientWorkMsg struct {
	Client string
}

// ShowInvoiceMsg opens the detail view of one invoice
type ShowInvoiceMsg struct {
	Number string
}

// firstRunCheckMsg reports whether the database can be read and has any clients
type firstRunCheckMsg struct {
	hasClients bool
	err        error
}
