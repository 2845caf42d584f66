package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/config"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldCompany = iota
	settingsFieldOwner
	settingsFieldAddress
	settingsFieldTaxID
	settingsFieldTaxRate
	settingsFieldOutputDir
	settingsFieldLogo
	settingsFieldCount
)

var settingsLabels = []string{
	"Company Name:", "Owner:", "Address (lines separated by |):", "Tax ID:",
	"VAT Rate (%):", "Output Directory:", "Logo Path (empty = logo.jpg):",
}

type settingsSavedMsg struct {
	err error
}

// SettingsModel shows and edits the letterhead and invoice settings
type SettingsModel struct {
	app        *app.App
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:  a,
		mode: settingsModeView,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) initForm() {
	cfg := m.app.Config
	values := []string{
		cfg.Company.Name,
		cfg.Company.Owner,
		strings.Join(cfg.Company.Address, " | "),
		cfg.Company.TaxID,
		strconv.FormatFloat(cfg.Invoice.TaxRate*100, 'f', -1, 64),
		cfg.Invoice.OutputDir,
		cfg.Invoice.LogoPath,
	}

	m.fields = make([]textinput.Model, settingsFieldCount)
	for i := range m.fields {
		m.fields[i] = textinput.New()
		m.fields[i].CharLimit = 256
		m.fields[i].Width = 60
		m.fields[i].SetValue(values[i])
	}
	m.fields[settingsFieldTaxRate].CharLimit = 10
	m.fields[settingsFieldTaxRate].Width = 10
	m.fields[settingsFieldOutputDir].Placeholder = "/path/to/invoices"
	m.fields[settingsFieldLogo].Placeholder = "/path/to/logo.jpg"

	m.fieldFocus = settingsFieldCompany
	m.fields[settingsFieldCompany].Focus()
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	return func() tea.Msg {
		outputDir := strings.TrimSpace(m.fields[settingsFieldOutputDir].Value())
		if outputDir == "" {
			return settingsSavedMsg{err: fmt.Errorf("output directory is required")}
		}

		taxRate, err := strconv.ParseFloat(strings.TrimSpace(m.fields[settingsFieldTaxRate].Value()), 64)
		if err != nil || taxRate < 0 || taxRate >= 100 {
			return settingsSavedMsg{err: fmt.Errorf("VAT rate must be a percentage between 0 and 100")}
		}

		var address []string
		for _, line := range strings.Split(m.fields[settingsFieldAddress].Value(), "|") {
			if line = strings.TrimSpace(line); line != "" {
				address = append(address, line)
			}
		}

		cfg := m.app.Config
		cfg.Company.Name = strings.TrimSpace(m.fields[settingsFieldCompany].Value())
		cfg.Company.Owner = strings.TrimSpace(m.fields[settingsFieldOwner].Value())
		cfg.Company.Address = address
		cfg.Company.TaxID = strings.TrimSpace(m.fields[settingsFieldTaxID].Value())
		cfg.Invoice.TaxRate = taxRate / 100
		cfg.Invoice.OutputDir = expandPath(outputDir)
		cfg.Invoice.LogoPath = expandPath(strings.TrimSpace(m.fields[settingsFieldLogo].Value()))

		if err := cfg.EnsureDirectories(); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to create directories: %w", err)}
		}
		if err := m.app.SaveConfig(); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}

		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch {
		case msg.String() == "enter":
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.statusMsg = "Settings saved"
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + settingsFieldCount) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	cfg := m.app.Config

	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) string {
		if value == "" {
			value = subtitleStyle.Render("(not set)")
		} else {
			value = valueStyle.Render(value)
		}
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), value)
	}

	s += subtitleStyle.Render("  Letterhead") + "\n\n"
	s += row("Company:", cfg.Company.Name)
	s += row("Owner:", cfg.Company.Owner)
	s += row("Address:", strings.Join(cfg.Company.Address, ", "))
	s += row("Tax ID:", cfg.Company.TaxID)

	s += "\n" + subtitleStyle.Render("  Invoices") + "\n\n"
	s += row("VAT Rate:", strconv.FormatFloat(cfg.Invoice.TaxRate*100, 'f', -1, 64)+"%")
	s += row("Output Directory:", cfg.Invoice.OutputDir)
	logo := cfg.ResolveLogoPath()
	if logo == "" {
		logo = "none found"
	}
	s += row("Logo:", logo)

	s += "\n" + subtitleStyle.Render("  Database") + "\n\n"
	s += row("Driver:", cfg.Database.Driver)
	if cfg.Database.Driver == config.DriverSQLite {
		s += row("File:", cfg.Database.Path)
	}
	s += row("Mail Server:", cfg.Mail.Host)

	s += "\n" + helpStyle.Render("  enter: edit settings")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Edit Settings") + "\n\n"

	for i, label := range settingsLabels {
		indicator := "  "
		if i == m.fieldFocus {
			indicator = "> "
		}
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}
