package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const summaryBarWidth = 30

// SummaryModel shows the invoiced amounts of one year, month by month
type SummaryModel struct {
	app     *app.App
	year    int
	summary *service.YearSummary

	loading bool
	err     error
}

type summaryDataMsg struct {
	year    int
	summary *service.YearSummary
	err     error
}

// NewSummaryModel creates a new summary screen for the current year
func NewSummaryModel(a *app.App) tea.Model {
	return &SummaryModel{
		app:     a,
		year:    time.Now().Year(),
		loading: true,
	}
}

func (m *SummaryModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *SummaryModel) loadData() tea.Cmd {
	year := m.year
	return func() tea.Msg {
		summary, err := m.app.ReportService.GetYearSummary(context.Background(), year)
		return summaryDataMsg{year: year, summary: summary, err: err}
	}
}

func (m *SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case summaryDataMsg:
		if msg.year != m.year {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Left):
			m.year--
			m.loading = true
			return m, m.loadData()

		case key.Matches(msg, DefaultKeyMap.Right):
			if m.year < time.Now().Year() {
				m.year++
				m.loading = true
				return m, m.loadData()
			}
		}
	}

	return m, nil
}

func (m *SummaryModel) View() string {
	s := titleStyle.Render(fmt.Sprintf("Invoiced in %d", m.year)) + "\n\n"

	if m.loading {
		return s + "Loading summary..."
	}
	if m.err != nil {
		return s + errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	sum := m.summary
	if sum == nil || sum.Invoices == 0 {
		s += subtitleStyle.Render("  No invoices dated in this year.") + "\n"
	} else {
		s += m.renderMonths()
		s += "\n"
		s += fmt.Sprintf("  %-10s %d\n", "Invoices", sum.Invoices)
		s += fmt.Sprintf("  %-10s %s\n", "Base", formatMoney(sum.Base))
		s += fmt.Sprintf("  %-10s %s\n", "VAT", formatMoney(sum.Tax))
		s += "  " + lipgloss.NewStyle().Bold(true).Render(
			fmt.Sprintf("%-10s %s", "Total", formatMoney(sum.Total)),
		) + "\n"
	}
	if sum != nil && sum.Undated > 0 {
		s += "\n" + fallbackStyle.Render(fmt.Sprintf("  %d invoice(s) without a readable date are not counted", sum.Undated)) + "\n"
	}

	s += "\n" + helpStyle.Render("  ←/→: previous/next year")
	return s
}

func (m *SummaryModel) renderMonths() string {
	peak := decimal.Zero
	for _, v := range m.summary.ByMonth {
		if v.GreaterThan(peak) {
			peak = v
		}
	}

	var s string
	for month := time.January; month <= time.December; month++ {
		v, ok := m.summary.ByMonth[month]
		if !ok {
			v = decimal.Zero
		}
		bar := ""
		if peak.IsPositive() && v.IsPositive() {
			n := int(v.Mul(decimal.NewFromInt(summaryBarWidth)).Div(peak).Ceil().IntPart())
			bar = strings.Repeat("█", n)
		}
		s += fmt.Sprintf("  %-4s %s %14s\n",
			month.String()[:3],
			amountStyle.Render(bar)+strings.Repeat(" ", summaryBarWidth-lipgloss.Width(bar)),
			formatMoney(v),
		)
	}
	return s
}
