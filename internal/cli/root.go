package cli

import (
	"github.com/andy/facturas/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "facturas",
	Short: "Browse invoices and print them as PDF",
	Long: `Facturas is a terminal front-end for an existing invoicing database.
It lists clients, invoices and billed work, and renders any invoice as a
paginated PDF document.

By default, running facturas without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

// NeedsApp reports whether the command line runs a command that uses the
// database. Help, completion and config commands work without it.
func NeedsApp(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return false
		}
	}
	if len(args) > 0 && (args[0] == "help" || args[0] == "completion") {
		return false
	}

	cmd, _, err := rootCmd.Find(args)
	if err != nil {
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return false
		}
	}
	return true
}

func init() {
	// Add all subcommands
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(workCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tuiCmd)
}
