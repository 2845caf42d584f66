package cli

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/render"
	"github.com/andy/facturas/internal/service"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:     "invoices",
	Aliases: []string{"facturas"},
	Short:   "Browse and print invoices",
	Long:    `List invoices, show one with its lines and totals, export it to PDF or send it by mail.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		client, _ := cmd.Flags().GetString("client")
		number, _ := cmd.Flags().GetString("number")

		invoices, err := appInstance.InvoiceService.ListInvoices(ctx, domain.InvoiceFilter{
			Client: client,
			Number: number,
		})
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		// Print table header
		fmt.Printf("%-12s %-10s  %-36s %12s\n", "Number", "Date", "Client", "Total")
		fmt.Println("------------------------------------------------------------------------------")

		for _, invoice := range invoices {
			total := "-"
			if invoice.Total.Valid {
				total = strings.TrimSpace(invoice.Total.String)
			}
			fmt.Printf("%-12s %-10s  %-36s %12s\n",
				truncate(invoice.Number, 12),
				render.FormatDate(invoice.Date),
				truncate(invoice.ClientName, 36),
				total,
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [number]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		detail, err := appInstance.InvoiceService.GetInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		pages, err := appInstance.InvoiceService.PreviewPages(ctx, args[0])
		if err != nil {
			return err
		}

		h := detail.Header
		fmt.Printf("Invoice: %s\n", h.Number)
		fmt.Printf("Date:    %s\n", render.FormatDate(h.Date))
		fmt.Printf("Client:  %s\n", h.ClientName)
		if h.ClientTaxID.Valid && h.ClientTaxID.String != "" {
			fmt.Printf("CIF/NIF: %s\n", h.ClientTaxID.String)
		}
		fmt.Printf("Pages:   %d\n", pages)
		fmt.Println()

		if len(detail.Lines) > 0 {
			fmt.Printf("%-10s %-44s %9s %10s %12s\n", "Code", "Description", "Qty", "Price", "Amount")
			fmt.Println("-----------------------------------------------------------------------------------------")
			for _, l := range detail.Lines {
				qty, price, amount := render.LineAmounts(l)
				fmt.Printf("%-10s %-44s %9s %10s %12s\n",
					truncate(l.Code.String, 10),
					truncate(strings.Join(strings.Fields(l.Description.String), " "), 44),
					render.FormatAmount(qty),
					render.FormatAmount(price),
					render.FormatAmount(amount),
				)
			}
			fmt.Println()
		}

		printTotal("Base:", detail.Totals.Base)
		printTotal("VAT:", detail.Totals.Tax)
		printTotal("Total:", detail.Totals.Total)
		if !detail.BaseTotal.Equal(detail.Totals.Base.Value) {
			fmt.Printf("\nWarning: lines add up to %s\n", render.FormatAmount(detail.BaseTotal))
		}

		return nil
	},
}

var invoicesPDFCmd = &cobra.Command{
	Use:   "pdf [number]",
	Short: "Export an invoice to PDF",
	Long: `Render an invoice as an A4 PDF document. Without --output the file is
written to the configured output directory as Factura_<number>.pdf.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		output, _ := cmd.Flags().GetString("output")
		open, _ := cmd.Flags().GetBool("open")

		path, summary, err := appInstance.InvoiceService.ExportPDF(ctx, args[0], output)
		if err != nil {
			return fmt.Errorf("failed to export invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s saved to %s\n", domain.NormalizeNumber(args[0]), path)
		fmt.Printf("  Pages: %d  Lines: %d  Total: %s\n",
			summary.Pages, summary.Lines, render.FormatAmount(summary.Totals.Total.Value))

		if open {
			if err := openFile(path); err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
		}
		return nil
	},
}

var invoicesSendCmd = &cobra.Command{
	Use:   "send [number]",
	Short: "Send an invoice PDF by mail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		to, _ := cmd.Flags().GetString("to")
		yes, _ := cmd.Flags().GetBool("yes")

		if strings.TrimSpace(to) == "" {
			return service.ErrNoRecipient
		}
		if !yes && !confirmPrompt(fmt.Sprintf("Send invoice %s to %s?", args[0], to)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.InvoiceService.SendInvoice(ctx, args[0], to); err != nil {
			if errors.Is(err, service.ErrInvoiceNotFound) {
				return err
			}
			return fmt.Errorf("failed to send invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s sent to %s\n", domain.NormalizeNumber(args[0]), to)
		return nil
	},
}

func printTotal(label string, a render.Amount) {
	note := ""
	if a.Source != render.SourceStored {
		note = "  (" + a.Source.String() + ")"
	}
	fmt.Printf("%-8s %12s%s\n", label, render.FormatAmount(a.Value), note)
}

// openFile shows a file with the desktop's default viewer
func openFile(path string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", path)
	case "windows":
		c = exec.Command("cmd", "/c", "start", "", path)
	default:
		c = exec.Command("xdg-open", path)
	}
	return c.Start()
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesPDFCmd)
	invoicesCmd.AddCommand(invoicesSendCmd)

	// List flags
	invoicesListCmd.Flags().StringP("client", "c", "", "Only invoices whose client name contains this text")
	invoicesListCmd.Flags().StringP("number", "n", "", "Only the invoice with this number")

	// PDF flags
	invoicesPDFCmd.Flags().StringP("output", "o", "", "Output file (default: output directory)")
	invoicesPDFCmd.Flags().Bool("open", false, "Open the PDF after writing it")

	// Send flags
	invoicesSendCmd.Flags().String("to", "", "Recipient address (required)")
	invoicesSendCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	invoicesSendCmd.MarkFlagRequired("to")
}
