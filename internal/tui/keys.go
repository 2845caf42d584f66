package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Navigation
	Summary   key.Binding
	Clients   key.Binding
	Invoices  key.Binding
	WorkItems key.Binding
	Settings  key.Binding

	// Actions
	Select         key.Binding
	Search         key.Binding
	Refresh        key.Binding
	ClientInvoices key.Binding
	ClientWork     key.Binding
	ExportPDF      key.Binding
	Send           key.Binding

	// Movement
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:           key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Summary:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "summary")),
	Clients:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clients")),
	Invoices:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invoices")),
	WorkItems:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "work items")),
	Settings:       key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Refresh:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	ClientInvoices: key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "client invoices")),
	ClientWork:     key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "client work items")),
	ExportPDF:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "export pdf")),
	Send:           key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "send by mail")),
	Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:           key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:          key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
}
