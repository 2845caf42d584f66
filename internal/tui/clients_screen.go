package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// clientMode represents the current screen mode
type clientMode int

const (
	clientModeList clientMode = iota
	clientModeSearch
	clientModeDetail
)

// ClientsModel displays a searchable list of clients and their billing summary
type ClientsModel struct {
	app       *app.App
	clients   []*domain.Client
	cursor    int
	loading   bool
	err       error
	statusMsg string

	mode    clientMode
	search  textinput.Model
	query   string
	summary *service.ClientSummary
}

type clientsDataMsg struct {
	query   string
	clients []*domain.Client
	err     error
}

type clientSummaryMsg struct {
	summary *service.ClientSummary
	err     error
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(a *app.App) tea.Model {
	search := textinput.New()
	search.Placeholder = "client name"
	search.CharLimit = 80
	search.Width = 40
	return &ClientsModel{
		app:     a,
		loading: true,
		search:  search,
	}
}

// IsCapturingInput returns true while the search box has focus
func (m *ClientsModel) IsCapturingInput() bool {
	return m.mode == clientModeSearch
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	query := m.query
	return func() tea.Msg {
		clients, err := m.app.ClientRepo.List(context.Background(), query)
		return clientsDataMsg{query: query, clients: clients, err: err}
	}
}

func (m *ClientsModel) loadSummary(name string) tea.Cmd {
	return func() tea.Msg {
		summary, err := m.app.ReportService.GetClientSummary(context.Background(), name)
		return clientSummaryMsg{summary: summary, err: err}
	}
}

func (m *ClientsModel) selected() *domain.Client {
	if m.cursor < 0 || m.cursor >= len(m.clients) {
		return nil
	}
	return m.clients[m.cursor]
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientsDataMsg:
		if msg.query != m.query {
			return m, nil // superseded by a newer search
		}
		m.loading = false
		m.err = msg.err
		m.clients = msg.clients
		if m.cursor >= len(m.clients) {
			m.cursor = max(len(m.clients)-1, 0)
		}
		return m, nil

	case clientSummaryMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = clientModeList
			return m, nil
		}
		m.summary = msg.summary
		return m, nil

	case RefreshDataMsg:
		return m, m.loadClients()

	case tea.KeyMsg:
		switch m.mode {
		case clientModeSearch:
			return m.updateSearch(msg)
		case clientModeDetail:
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m *ClientsModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.clients)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Search):
		m.mode = clientModeSearch
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, DefaultKeyMap.Back):
		if m.query != "" {
			m.query = ""
			m.loading = true
			return m, m.loadClients()
		}
	case key.Matches(msg, DefaultKeyMap.Refresh):
		m.loading = true
		return m, m.loadClients()
	case key.Matches(msg, DefaultKeyMap.Select):
		if c := m.selected(); c != nil {
			m.mode = clientModeDetail
			m.summary = nil
			return m, m.loadSummary(c.Name)
		}
	case key.Matches(msg, DefaultKeyMap.ClientInvoices):
		if c := m.selected(); c != nil {
			name := c.Name
			return m, func() tea.Msg { return ShowClientInvoicesMsg{Client: name} }
		}
	case key.Matches(msg, DefaultKeyMap.ClientWork):
		if c := m.selected(); c != nil {
			name := c.Name
			return m, func() tea.Msg { return ShowClientWorkMsg{Client: name} }
		}
	}
	return m, nil
}

func (m *ClientsModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = clientModeList
		m.search.Blur()
		return m, nil
	case "enter":
		m.mode = clientModeList
		m.search.Blur()
		m.query = strings.TrimSpace(m.search.Value())
		m.cursor = 0
		m.loading = true
		return m, m.loadClients()
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *ClientsModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = clientModeList
		m.summary = nil
	case key.Matches(msg, DefaultKeyMap.ClientInvoices):
		if c := m.selected(); c != nil {
			name := c.Name
			return m, func() tea.Msg { return ShowClientInvoicesMsg{Client: name} }
		}
	case key.Matches(msg, DefaultKeyMap.ClientWork):
		if c := m.selected(); c != nil {
			name := c.Name
			return m, func() tea.Msg { return ShowClientWorkMsg{Client: name} }
		}
	}
	return m, nil
}

func (m *ClientsModel) View() string {
	if m.mode == clientModeDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m *ClientsModel) viewList() string {
	var s string

	header := "Clients"
	if m.query != "" {
		header += subtitleStyle.Render(fmt.Sprintf("  (matching %q)", m.query))
	}
	s += titleStyle.Render(header) + "\n\n"

	if m.mode == clientModeSearch {
		s += "  Search: " + m.search.View() + "\n\n"
	}

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	if m.loading {
		return s + "Loading clients..."
	}
	if m.err != nil {
		return s + errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if len(m.clients) == 0 {
		s += subtitleStyle.Render("  No clients found.") + "\n"
	}

	for i, client := range m.clients {
		s += m.renderClient(i, client) + "\n"
	}

	if m.mode == clientModeSearch {
		s += "\n" + helpStyle.Render("  enter: search  esc: cancel")
	} else {
		s += "\n" + helpStyle.Render("  j/k: navigate  /: search  enter: summary  I: invoices  W: work items  r: refresh")
	}

	return s
}

func (m *ClientsModel) renderClient(index int, client *domain.Client) string {
	selected := index == m.cursor

	indicator := "  "
	if selected {
		indicator = "> "
	}

	line1 := fmt.Sprintf("%s%s", indicator, client.Name)
	var details []string
	if client.TaxID.Valid && client.TaxID.String != "" {
		details = append(details, "CIF/NIF: "+client.TaxID.String)
	}
	if client.Address.Valid && client.Address.String != "" {
		details = append(details, truncateStr(client.Address.String, 60))
	}

	nameStyle := lipgloss.NewStyle()
	if selected {
		nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
	}

	result := nameStyle.Render(line1)
	if len(details) > 0 {
		result += "\n" + subtitleStyle.Render("    "+strings.Join(details, "  |  "))
	}
	return result
}

func (m *ClientsModel) viewDetail() string {
	c := m.selected()
	if c == nil {
		return ""
	}

	s := titleStyle.Render(c.Name) + "\n\n"
	if c.TaxID.Valid {
		s += fmt.Sprintf("  CIF/NIF:   %s\n", c.TaxID.String)
	}
	if c.Address.Valid {
		s += fmt.Sprintf("  Address:   %s\n", c.Address.String)
	}
	s += "\n"

	if m.summary == nil {
		s += subtitleStyle.Render("  Loading summary...") + "\n"
	} else {
		sum := m.summary
		s += fmt.Sprintf("  Invoices:  %d\n", sum.Invoices)
		s += fmt.Sprintf("  Work items: %d\n", sum.WorkItems)
		s += fmt.Sprintf("  Billed:    %s\n", amountStyle.Render(formatMoney(sum.Billed)))
		if sum.LastInvoice != "" {
			s += fmt.Sprintf("  Last:      %s  %s\n", sum.LastInvoice, formatDate(sum.LastDate))
		}
	}

	s += "\n" + helpStyle.Render("  I: invoices  W: work items  esc: back")
	return s
}
