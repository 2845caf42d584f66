package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/render"
	"github.com/andy/facturas/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type invoiceViewMode int

const (
	invoiceViewList invoiceViewMode = iota
	invoiceViewSearch
	invoiceViewDetail
	invoiceViewSavePath
	invoiceViewSend
)

// search form field indices
const (
	searchFieldClient = iota
	searchFieldNumber
	searchFieldCount
)

// InvoicesModel lists invoices and shows, exports and sends a selected one
type InvoicesModel struct {
	app       *app.App
	mode      invoiceViewMode
	invoices  []*domain.InvoiceHeader
	cursor    int
	filter    domain.InvoiceFilter
	loading   bool
	err       error
	statusMsg string

	// Search form
	fields     []textinput.Model
	fieldFocus int

	// Detail
	number string
	detail *service.InvoiceDetail
	pages  int

	savePathInput  textinput.Model
	recipientInput textinput.Model
	busy           bool
}

type invoicesDataMsg struct {
	filter   domain.InvoiceFilter
	invoices []*domain.InvoiceHeader
	err      error
}

type invoiceDetailMsg struct {
	number string
	detail *service.InvoiceDetail
	pages  int
	err    error
}

type invoiceExportedMsg struct {
	path    string
	summary *render.Summary
	err     error
}

type invoiceSentMsg struct {
	to  string
	err error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	return &InvoicesModel{
		app:     a,
		loading: true,
	}
}

// IsCapturingInput returns true when one of the text inputs has focus
func (m *InvoicesModel) IsCapturingInput() bool {
	switch m.mode {
	case invoiceViewSearch, invoiceViewSavePath, invoiceViewSend:
		return true
	}
	return false
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	filter := m.filter
	return func() tea.Msg {
		invoices, err := m.app.InvoiceService.ListInvoices(context.Background(), filter)
		return invoicesDataMsg{filter: filter, invoices: invoices, err: err}
	}
}

func (m *InvoicesModel) loadDetail(number string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		detail, err := m.app.InvoiceService.GetInvoice(ctx, number)
		if err != nil {
			return invoiceDetailMsg{number: number, err: err}
		}
		pages, err := m.app.InvoiceService.PreviewPages(ctx, number)
		if err != nil {
			return invoiceDetailMsg{number: number, err: err}
		}
		return invoiceDetailMsg{number: number, detail: detail, pages: pages}
	}
}

func (m *InvoicesModel) exportPDF(path string) tea.Cmd {
	number := m.number
	return func() tea.Msg {
		written, summary, err := m.app.InvoiceService.ExportPDF(context.Background(), number, expandPath(path))
		return invoiceExportedMsg{path: written, summary: summary, err: err}
	}
}

func (m *InvoicesModel) sendInvoice(to string) tea.Cmd {
	number := m.number
	return func() tea.Msg {
		err := m.app.InvoiceService.SendInvoice(context.Background(), number, to)
		return invoiceSentMsg{to: to, err: err}
	}
}

func (m *InvoicesModel) initSearchForm() {
	m.fields = make([]textinput.Model, searchFieldCount)

	m.fields[searchFieldClient] = textinput.New()
	m.fields[searchFieldClient].Placeholder = "client name contains"
	m.fields[searchFieldClient].CharLimit = 80
	m.fields[searchFieldClient].Width = 40
	m.fields[searchFieldClient].SetValue(m.filter.Client)

	m.fields[searchFieldNumber] = textinput.New()
	m.fields[searchFieldNumber].Placeholder = "exact number"
	m.fields[searchFieldNumber].CharLimit = 20
	m.fields[searchFieldNumber].Width = 20
	m.fields[searchFieldNumber].SetValue(m.filter.Number)

	m.fieldFocus = searchFieldClient
	m.fields[searchFieldClient].Focus()
}

func (m *InvoicesModel) openDetail(number string) tea.Cmd {
	m.mode = invoiceViewDetail
	m.number = number
	m.detail = nil
	m.pages = 0
	m.err = nil
	m.statusMsg = ""
	return m.loadDetail(number)
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesDataMsg:
		if msg.filter != m.filter {
			return m, nil // superseded by a newer search
		}
		m.loading = false
		m.err = msg.err
		m.invoices = msg.invoices
		if m.cursor >= len(m.invoices) {
			m.cursor = max(len(m.invoices)-1, 0)
		}
		return m, nil

	case invoiceDetailMsg:
		if msg.number != m.number {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			if errors.Is(msg.err, service.ErrInvoiceNotFound) {
				m.mode = invoiceViewList
			}
			return m, nil
		}
		m.detail = msg.detail
		m.pages = msg.pages
		return m, nil

	case invoiceExportedMsg:
		m.busy = false
		m.statusMsg = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Saved %d page(s) to %s", msg.summary.Pages, msg.path)
		return m, nil

	case invoiceSentMsg:
		m.busy = false
		m.statusMsg = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Invoice %s sent to %s", m.number, msg.to)
		return m, nil

	case ShowClientInvoicesMsg:
		m.mode = invoiceViewList
		m.filter = domain.InvoiceFilter{Client: msg.Client}
		m.cursor = 0
		m.loading = true
		m.statusMsg = ""
		return m, m.loadInvoices()

	case ShowInvoiceMsg:
		m.loading = true
		return m, tea.Batch(m.loadInvoices(), m.openDetail(domain.NormalizeNumber(msg.Number)))

	case RefreshDataMsg:
		cmds := []tea.Cmd{m.loadInvoices()}
		if m.mode == invoiceViewDetail && m.number != "" {
			cmds = append(cmds, m.loadDetail(m.number))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch m.mode {
		case invoiceViewSearch:
			return m.updateSearch(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		case invoiceViewSavePath:
			return m.updateSavePath(msg)
		case invoiceViewSend:
			return m.updateSend(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Search):
		m.initSearchForm()
		m.mode = invoiceViewSearch
		return m, textinput.Blink
	case key.Matches(msg, DefaultKeyMap.Back):
		if m.filter != (domain.InvoiceFilter{}) {
			m.filter = domain.InvoiceFilter{}
			m.cursor = 0
			m.loading = true
			return m, m.loadInvoices()
		}
	case key.Matches(msg, DefaultKeyMap.Refresh):
		m.loading = true
		return m, m.loadInvoices()
	case key.Matches(msg, DefaultKeyMap.Select):
		if m.cursor < len(m.invoices) {
			return m, m.openDetail(m.invoices[m.cursor].Number)
		}
	}
	return m, nil
}

func (m *InvoicesModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = invoiceViewList
		return m, nil
	case "tab", "shift+tab":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus + 1) % searchFieldCount
		return m, m.fields[m.fieldFocus].Focus()
	case "enter":
		m.filter = domain.InvoiceFilter{
			Client: strings.TrimSpace(m.fields[searchFieldClient].Value()),
			Number: domain.NormalizeNumber(m.fields[searchFieldNumber].Value()),
		}
		m.mode = invoiceViewList
		m.cursor = 0
		m.loading = true
		return m, m.loadInvoices()
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.detail = nil
		m.err = nil
		m.statusMsg = ""
	case key.Matches(msg, DefaultKeyMap.ExportPDF):
		if m.detail == nil {
			return m, nil
		}
		m.savePathInput = textinput.New()
		m.savePathInput.Placeholder = "path/to/factura.pdf"
		m.savePathInput.Width = 60
		m.savePathInput.CharLimit = 256
		m.savePathInput.SetValue(m.app.InvoiceService.DefaultPDFPath(m.number))
		m.err = nil
		m.statusMsg = ""
		m.mode = invoiceViewSavePath
		return m, m.savePathInput.Focus()
	case key.Matches(msg, DefaultKeyMap.Send):
		if m.detail == nil {
			return m, nil
		}
		m.recipientInput = textinput.New()
		m.recipientInput.Placeholder = "client@example.com"
		m.recipientInput.Width = 50
		m.recipientInput.CharLimit = 254
		m.err = nil
		m.statusMsg = ""
		m.mode = invoiceViewSend
		return m, m.recipientInput.Focus()
	case key.Matches(msg, DefaultKeyMap.ClientWork):
		if m.detail != nil {
			name := m.detail.Header.ClientName
			return m, func() tea.Msg { return ShowClientWorkMsg{Client: name} }
		}
	}
	return m, nil
}

func (m *InvoicesModel) updateSavePath(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = invoiceViewDetail
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.savePathInput.Value())
		if path == "" {
			m.err = fmt.Errorf("save path cannot be empty")
			return m, nil
		}
		m.mode = invoiceViewDetail
		m.busy = true
		m.statusMsg = "Rendering PDF..."
		return m, m.exportPDF(path)
	}

	var cmd tea.Cmd
	m.savePathInput, cmd = m.savePathInput.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateSend(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = invoiceViewDetail
		return m, nil
	case "enter":
		to := strings.TrimSpace(m.recipientInput.Value())
		if to == "" {
			m.err = service.ErrNoRecipient
			return m, nil
		}
		m.mode = invoiceViewDetail
		m.busy = true
		m.statusMsg = "Sending..."
		return m, m.sendInvoice(to)
	}

	var cmd tea.Cmd
	m.recipientInput, cmd = m.recipientInput.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) View() string {
	switch m.mode {
	case invoiceViewDetail, invoiceViewSavePath, invoiceViewSend:
		return m.viewDetail()
	}
	return m.viewList()
}

func (m *InvoicesModel) viewList() string {
	s := titleStyle.Render("Invoices")
	var active []string
	if m.filter.Client != "" {
		active = append(active, fmt.Sprintf("client %q", m.filter.Client))
	}
	if m.filter.Number != "" {
		active = append(active, "number "+m.filter.Number)
	}
	if len(active) > 0 {
		s += subtitleStyle.Render("  (" + strings.Join(active, ", ") + ")")
	}
	s += "\n\n"

	if m.mode == invoiceViewSearch {
		labels := []string{"Client:", "Number:"}
		for i, label := range labels {
			indicator := "  "
			if i == m.fieldFocus {
				indicator = "> "
			}
			s += fmt.Sprintf("%s%-8s %s\n", indicator, label, m.fields[i].View())
		}
		s += "\n" + helpStyle.Render("  tab: next field  enter: search  esc: cancel") + "\n\n"
	}

	if m.loading {
		return s + "Loading invoices..."
	}
	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	if len(m.invoices) == 0 {
		s += subtitleStyle.Render("  No invoices found.") + "\n"
	} else {
		s += subtitleStyle.Render(fmt.Sprintf("  %-12s %-10s  %-36s %14s", "Number", "Date", "Client", "Total")) + "\n"
		for i, inv := range m.invoices {
			line := fmt.Sprintf("  %-12s %-10s  %-36s %14s",
				truncateStr(inv.Number, 12),
				formatDate(inv.Date),
				truncateStr(inv.ClientName, 36),
				formatRaw(inv.Total),
			)
			if i == m.cursor {
				line = selectedStyle.Render(line)
			}
			s += line + "\n"
		}
	}

	if m.mode != invoiceViewSearch {
		s += "\n" + helpStyle.Render("  j/k: navigate  enter: view  /: search  esc: clear filter  r: refresh")
	}
	return s
}

func (m *InvoicesModel) viewDetail() string {
	s := titleStyle.Render("Invoice "+m.number) + "\n\n"

	if m.detail == nil {
		if m.err != nil {
			return s + errStyle.Render(fmt.Sprintf("  Error: %v", m.err))
		}
		return s + "Loading invoice..."
	}

	h := m.detail.Header
	s += fmt.Sprintf("  Date:     %s\n", formatDate(h.Date))
	s += fmt.Sprintf("  Client:   %s\n", h.ClientName)
	if h.ClientTaxID.Valid && h.ClientTaxID.String != "" {
		s += fmt.Sprintf("  CIF/NIF:  %s\n", h.ClientTaxID.String)
	}
	s += fmt.Sprintf("  Pages:    %d\n\n", m.pages)

	s += subtitleStyle.Render(fmt.Sprintf("  %-10s %-40s %9s %12s %14s", "Code", "Description", "Qty", "Price", "Amount")) + "\n"
	for _, l := range m.detail.Lines {
		qty, price, amount := render.LineAmounts(l)
		s += fmt.Sprintf("  %-10s %-40s %9s %12s %14s\n",
			truncateStr(nullStr(l.Code), 10),
			truncateStr(strings.Join(strings.Fields(nullStr(l.Description)), " "), 40),
			qty.StringFixed(2),
			price.StringFixed(2),
			formatMoney(amount),
		)
	}
	if len(m.detail.Lines) == 0 {
		s += subtitleStyle.Render("  No lines.") + "\n"
	}
	s += "\n"

	t := m.detail.Totals
	s += totalRow("Base", t.Base)
	s += totalRow("VAT", t.Tax)
	s += totalRow("Total", t.Total)
	if !m.detail.BaseTotal.Equal(t.Base.Value) {
		s += fallbackStyle.Render(fmt.Sprintf("  Lines add up to %s", formatMoney(m.detail.BaseTotal))) + "\n"
	}
	s += "\n"

	switch m.mode {
	case invoiceViewSavePath:
		s += "  Save to: " + m.savePathInput.View() + "\n"
		s += helpStyle.Render("  enter: export  esc: cancel") + "\n"
	case invoiceViewSend:
		s += "  Send to: " + m.recipientInput.View() + "\n"
		s += helpStyle.Render("  enter: send  esc: cancel") + "\n"
	default:
		if m.err != nil {
			s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
		}
		if m.statusMsg != "" {
			s += statusStyle.Render("  "+m.statusMsg) + "\n"
		}
		s += "\n" + helpStyle.Render("  p: export pdf  m: send by mail  W: client work items  esc: back")
	}
	return s
}

// totalRow renders one line of the totals block, flagging amounts that were
// not taken from the stored invoice
func totalRow(label string, a render.Amount) string {
	row := fmt.Sprintf("  %-8s %14s", label+":", formatMoney(a.Value))
	if a.Source != render.SourceStored {
		return amountStyle.Render(row) + fallbackStyle.Render("  ("+a.Source.String()+")") + "\n"
	}
	return amountStyle.Render(row) + "\n"
}
