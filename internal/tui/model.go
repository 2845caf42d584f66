package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/facturas/internal/app"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenClients Screen = iota
	ScreenInvoices
	ScreenWorkItems
	ScreenSummary
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenClients:
		return "Clients"
	case ScreenInvoices:
		return "Invoices"
	case ScreenWorkItems:
		return "Work Items"
	case ScreenSummary:
		return "Summary"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	clients   tea.Model
	invoices  tea.Model
	workItems tea.Model
	summary   tea.Model
	settings  tea.Model

	err error
}

// New creates a new root model
func New(a *app.App) Model {
	return Model{
		app:           a,
		currentScreen: ScreenClients,
		clients:       NewClientsModel(a),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.checkFirstRun(),
	}
	if m.clients != nil {
		cmds = append(cmds, m.clients.Init())
	}
	return tea.Batch(cmds...)
}

// checkFirstRun checks that the legacy tables can be read
func (m *Model) checkFirstRun() tea.Cmd {
	return func() tea.Msg {
		clients, err := m.app.ClientRepo.List(context.Background(), "")
		if err != nil {
			return firstRunCheckMsg{err: err}
		}
		return firstRunCheckMsg{hasClients: len(clients) > 0}
	}
}

// screenModel returns the slot holding a screen's model
func (m *Model) screenModel(screen Screen) *tea.Model {
	switch screen {
	case ScreenClients:
		return &m.clients
	case ScreenInvoices:
		return &m.invoices
	case ScreenWorkItems:
		return &m.workItems
	case ScreenSummary:
		return &m.summary
	case ScreenSettings:
		return &m.settings
	}
	return nil
}

func (m *Model) newScreen(screen Screen) tea.Model {
	switch screen {
	case ScreenClients:
		return NewClientsModel(m.app)
	case ScreenInvoices:
		return NewInvoicesModel(m.app)
	case ScreenWorkItems:
		return NewWorkItemsModel(m.app)
	case ScreenSummary:
		return NewSummaryModel(m.app)
	case ScreenSettings:
		return NewSettingsModel(m.app)
	}
	return nil
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	slot := m.screenModel(screen)
	if slot == nil {
		return nil
	}
	if *slot == nil {
		*slot = m.newScreen(screen)
		return (*slot).Init()
	}
	return func() tea.Msg { return RefreshDataMsg{} }
}

// navigate switches to screen and hands msg to it. A screen created here
// skips its own Init since msg already tells it what to load.
func (m *Model) navigate(screen Screen, msg tea.Msg) tea.Cmd {
	m.currentScreen = screen
	slot := m.screenModel(screen)
	if *slot == nil {
		*slot = m.newScreen(screen)
	}
	var cmd tea.Cmd
	*slot, cmd = (*slot).Update(msg)
	return cmd
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys (C, I, W, S, Q) are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	slot := m.screenModel(m.currentScreen)
	if slot == nil {
		return false
	}
	if ic, ok := (*slot).(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			var target Screen
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit
			case key.Matches(msg, DefaultKeyMap.Clients):
				target = ScreenClients
			case key.Matches(msg, DefaultKeyMap.Invoices):
				target = ScreenInvoices
			case key.Matches(msg, DefaultKeyMap.WorkItems):
				target = ScreenWorkItems
			case key.Matches(msg, DefaultKeyMap.Summary):
				target = ScreenSummary
			case key.Matches(msg, DefaultKeyMap.Settings):
				target = ScreenSettings
			default:
				target = -1
			}
			if target >= 0 {
				m.err = nil
				m.currentScreen = target
				return m, m.initScreen(target)
			}
		}

	case firstRunCheckMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("%w (run 'facturas db init' to create the tables)", msg.err)
		}
		return m, nil

	case ShowClientInvoicesMsg:
		return m, m.navigate(ScreenInvoices, msg)

	case ShowClientWorkMsg:
		return m, m.navigate(ScreenWorkItems, msg)

	case ShowInvoiceMsg:
		return m, m.navigate(ScreenInvoices, msg)

	case SwitchScreenMsg:
		m.currentScreen = msg.Screen
		cmd := m.initScreen(msg.Screen)
		return m, cmd

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Route message to current screen
	var cmd tea.Cmd
	if slot := m.screenModel(m.currentScreen); slot != nil && *slot != nil {
		*slot, cmd = (*slot).Update(msg)
	}
	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("facturas - %s", m.currentScreen.String()))

	footer := footerStyle.Render("[C]lients  [I]nvoices  [W]ork items  [S]ummary  [,] Settings  [Q]uit")

	content := "Loading..."
	if slot := m.screenModel(m.currentScreen); slot != nil && *slot != nil {
		content = (*slot).View()
	}

	errorDisplay := ""
	if m.err != nil {
		errorDisplay = lipgloss.NewStyle().
			Foreground(errorColor).
			Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
