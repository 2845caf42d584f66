package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andy/facturas/internal/render"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [year]",
	Short: "Show invoiced amounts per month",
	Long:  `Summarize the invoices dated in a year (the current year by default).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		year := time.Now().Year()
		if len(args) == 1 {
			y, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q: %w", args[0], err)
			}
			year = y
		}

		summary, err := appInstance.ReportService.GetYearSummary(ctx, year)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		fmt.Printf("Invoiced in %d\n\n", summary.Year)
		for m := time.January; m <= time.December; m++ {
			fmt.Printf("  %-10s %12s\n", m.String(), render.FormatAmount(summary.ByMonth[m]))
		}
		fmt.Println()
		fmt.Printf("  %-10s %12d\n", "Invoices", summary.Invoices)
		fmt.Printf("  %-10s %12s\n", "Base", render.FormatAmount(summary.Base))
		fmt.Printf("  %-10s %12s\n", "VAT", render.FormatAmount(summary.Tax))
		fmt.Printf("  %-10s %12s\n", "Total", render.FormatAmount(summary.Total))
		if summary.Undated > 0 {
			fmt.Printf("\n%d invoice(s) without a readable date were skipped\n", summary.Undated)
		}
		return nil
	},
}
