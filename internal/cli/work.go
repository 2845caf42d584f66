package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/render"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Search billed work",
	Long:  `Search invoice lines across all invoices by client and description.`,
}

var workListCmd = &cobra.Command{
	Use:   "list",
	Short: "List work items, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		client, _ := cmd.Flags().GetString("client")
		text, _ := cmd.Flags().GetString("text")

		items, err := appInstance.WorkItemRepo.List(ctx, domain.WorkItemFilter{
			Client: client,
			Text:   text,
		})
		if err != nil {
			return fmt.Errorf("failed to list work items: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("No work items found")
			return nil
		}

		fmt.Printf("%-10s  %-10s %-24s %-40s %12s\n", "Date", "Invoice", "Client", "Description", "Amount")
		fmt.Println("------------------------------------------------------------------------------------------------------")

		total := decimal.Zero
		for _, it := range items {
			_, _, amount := render.LineAmounts(&domain.InvoiceLine{
				Quantity: it.Quantity,
				Price:    it.Price,
				Amount:   it.Amount,
			})
			total = total.Add(amount)

			fmt.Printf("%-10s  %-10s %-24s %-40s %12s\n",
				render.FormatDate(it.Date),
				truncate(it.InvoiceNumber, 10),
				truncate(it.ClientName, 24),
				truncate(strings.Join(strings.Fields(it.Description.String), " "), 40),
				render.FormatAmount(amount),
			)
		}

		fmt.Printf("\nTotal: %d item(s), %s\n", len(items), render.FormatAmount(total))
		return nil
	},
}

func init() {
	workCmd.AddCommand(workListCmd)

	workListCmd.Flags().StringP("client", "c", "", "Only work for clients whose name contains this text")
	workListCmd.Flags().StringP("text", "t", "", "Only work whose description contains this text")
}
