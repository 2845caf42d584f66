package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/render"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// WorkItemsModel searches invoice lines across all invoices
type WorkItemsModel struct {
	app     *app.App
	items   []*domain.WorkItem
	total   decimal.Decimal
	cursor  int
	filter  domain.WorkItemFilter
	loading bool
	err     error

	searching  bool
	fields     []textinput.Model
	fieldFocus int
}

type workItemsDataMsg struct {
	filter domain.WorkItemFilter
	items  []*domain.WorkItem
	err    error
}

// NewWorkItemsModel creates a new work items screen model
func NewWorkItemsModel(a *app.App) tea.Model {
	return &WorkItemsModel{
		app:     a,
		loading: true,
	}
}

// IsCapturingInput returns true while the search form is open
func (m *WorkItemsModel) IsCapturingInput() bool {
	return m.searching
}

func (m *WorkItemsModel) Init() tea.Cmd {
	return m.loadItems()
}

func (m *WorkItemsModel) loadItems() tea.Cmd {
	filter := m.filter
	return func() tea.Msg {
		items, err := m.app.WorkItemRepo.List(context.Background(), filter)
		return workItemsDataMsg{filter: filter, items: items, err: err}
	}
}

func (m *WorkItemsModel) initSearchForm() {
	m.fields = make([]textinput.Model, 2)

	m.fields[0] = textinput.New()
	m.fields[0].Placeholder = "client name contains"
	m.fields[0].CharLimit = 80
	m.fields[0].Width = 40
	m.fields[0].SetValue(m.filter.Client)

	m.fields[1] = textinput.New()
	m.fields[1].Placeholder = "description contains"
	m.fields[1].CharLimit = 80
	m.fields[1].Width = 40
	m.fields[1].SetValue(m.filter.Text)

	m.fieldFocus = 0
	m.fields[0].Focus()
}

func (m *WorkItemsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workItemsDataMsg:
		if msg.filter != m.filter {
			return m, nil // superseded by a newer search
		}
		m.loading = false
		m.err = msg.err
		m.items = msg.items
		m.total = decimal.Zero
		for _, it := range m.items {
			m.total = m.total.Add(workItemAmount(it))
		}
		if m.cursor >= len(m.items) {
			m.cursor = max(len(m.items)-1, 0)
		}
		return m, nil

	case ShowClientWorkMsg:
		m.searching = false
		m.filter = domain.WorkItemFilter{Client: msg.Client}
		m.cursor = 0
		m.loading = true
		return m, m.loadItems()

	case RefreshDataMsg:
		return m, m.loadItems()

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *WorkItemsModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Search):
		m.initSearchForm()
		m.searching = true
		return m, textinput.Blink
	case key.Matches(msg, DefaultKeyMap.Back):
		if m.filter != (domain.WorkItemFilter{}) {
			m.filter = domain.WorkItemFilter{}
			m.cursor = 0
			m.loading = true
			return m, m.loadItems()
		}
	case key.Matches(msg, DefaultKeyMap.Refresh):
		m.loading = true
		return m, m.loadItems()
	case key.Matches(msg, DefaultKeyMap.Select):
		if m.cursor < len(m.items) {
			number := m.items[m.cursor].InvoiceNumber
			return m, func() tea.Msg { return ShowInvoiceMsg{Number: number} }
		}
	}
	return m, nil
}

func (m *WorkItemsModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		return m, nil
	case "tab", "shift+tab":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus + 1) % len(m.fields)
		return m, m.fields[m.fieldFocus].Focus()
	case "enter":
		m.filter = domain.WorkItemFilter{
			Client: strings.TrimSpace(m.fields[0].Value()),
			Text:   strings.TrimSpace(m.fields[1].Value()),
		}
		m.searching = false
		m.cursor = 0
		m.loading = true
		return m, m.loadItems()
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *WorkItemsModel) View() string {
	s := titleStyle.Render("Work Items")
	var active []string
	if m.filter.Client != "" {
		active = append(active, fmt.Sprintf("client %q", m.filter.Client))
	}
	if m.filter.Text != "" {
		active = append(active, fmt.Sprintf("text %q", m.filter.Text))
	}
	if len(active) > 0 {
		s += subtitleStyle.Render("  (" + strings.Join(active, ", ") + ")")
	}
	s += "\n\n"

	if m.searching {
		labels := []string{"Client:", "Text:"}
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
		return s + "Loading work items..."
	}
	if m.err != nil {
		return s + errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if len(m.items) == 0 {
		s += subtitleStyle.Render("  No work items found.") + "\n"
	} else {
		s += subtitleStyle.Render(fmt.Sprintf("  %-10s  %-10s %-24s %-36s %14s", "Date", "Invoice", "Client", "Description", "Amount")) + "\n"
		for i, it := range m.items {
			line := fmt.Sprintf("  %-10s  %-10s %-24s %-36s %14s",
				formatDate(it.Date),
				truncateStr(it.InvoiceNumber, 10),
				truncateStr(it.ClientName, 24),
				truncateStr(strings.Join(strings.Fields(nullStr(it.Description)), " "), 36),
				formatMoney(workItemAmount(it)),
			)
			if i == m.cursor {
				line = selectedStyle.Render(line)
			}
			s += line + "\n"
		}
		s += "\n" + amountStyle.Render(fmt.Sprintf("  %d item(s), %s", len(m.items), formatMoney(m.total))) + "\n"
	}

	if !m.searching {
		s += "\n" + helpStyle.Render("  j/k: navigate  enter: open invoice  /: search  esc: clear filter  r: refresh")
	}
	return s
}

// workItemAmount applies the same amount rule as invoice lines
func workItemAmount(it *domain.WorkItem) decimal.Decimal {
	_, _, amount := render.LineAmounts(&domain.InvoiceLine{
		Quantity: it.Quantity,
		Price:    it.Price,
		Amount:   it.Amount,
	})
	return amount
}
