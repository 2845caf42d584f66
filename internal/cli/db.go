package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the invoicing database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the invoicing tables if they do not exist",
	Long: `Create the Clientes, Facting and Contenid tables and their indexes.
Existing tables and data are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := appInstance.DB

		if err := db.RunMigrations(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		version, err := db.SchemaVersion()
		if err != nil {
			return err
		}

		fmt.Printf("✓ Database ready (%s, schema version %d)\n", db.Driver, version)
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	dbCmd.AddCommand(dbInitCmd)
}
