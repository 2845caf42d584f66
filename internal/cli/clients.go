package cli

import (
	"context"
	"fmt"

	"github.com/andy/facturas/internal/render"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Browse clients",
	Long:  `List clients and show their billing history.`,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		search, _ := cmd.Flags().GetString("search")

		clients, err := appInstance.ClientRepo.List(ctx, search)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		// Print table header
		fmt.Printf("%-40s %-15s %-40s\n", "Name", "CIF/NIF", "Address")
		fmt.Println("-----------------------------------------------------------------------------------------------")

		for _, client := range clients {
			fmt.Printf("%-40s %-15s %-40s\n",
				truncate(client.Name, 40),
				truncate(client.TaxID.String, 15),
				truncate(client.Address.String, 40),
			)
		}

		fmt.Printf("\nTotal: %d client(s)\n", len(clients))
		return nil
	},
}

var clientsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show the billing summary of a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		summary, err := appInstance.ReportService.GetClientSummary(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to summarize client: %w", err)
		}

		fmt.Printf("Client:      %s\n", summary.ClientName)
		fmt.Printf("Invoices:    %d\n", summary.Invoices)
		fmt.Printf("Work items:  %d\n", summary.WorkItems)
		fmt.Printf("Billed:      %s\n", render.FormatAmount(summary.Billed))
		if summary.LastInvoice != "" {
			fmt.Printf("Last:        %s (%s)\n", summary.LastInvoice, render.FormatDate(summary.LastDate))
		}
		return nil
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsShowCmd)

	clientsListCmd.Flags().StringP("search", "s", "", "Only clients whose name contains this text")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
