package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/domain"
)

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Calculate subtotal, tax and total",
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, _ := cmd.Flags().GetFloat64("rate")
		hours, _ := cmd.Flags().GetFloat64("hours")
		tax, _ := cmd.Flags().GetFloat64("tax")

		inv := &domain.Invoice{HourlyRate: rate, TotalHours: hours, TaxRate: tax}
		inv.Recalculate()
		writeTotals(cmd.OutOrStdout(), inv)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [invoice.yaml]",
	Short: "Check an invoice file for missing fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := invoiceArg(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		errs := inv.Validate()
		if len(errs) > 0 {
			fmt.Fprintln(out, "Invoice is incomplete:")
			writeFieldErrors(out, errs)
			return fmt.Errorf("%d field(s) need attention", len(errs))
		}

		fmt.Fprintln(out, "✓ Invoice is complete")
		writeTotals(out, inv)
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [invoice.yaml]",
	Short: "Render an invoice to PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := invoiceArg(args[0])
		if err != nil {
			return err
		}

		doc, err := appInstance.InvoiceService.Download(ctx, inv)
		if err != nil {
			return explain(err)
		}

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := os.WriteFile(path, doc.PDF, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(out, "✓ Invoice written to %s\n", path)
		}
		if doc.Location != "" {
			fmt.Fprintf(out, "✓ Invoice saved: %s\n", doc.Location)
		}
		writeTotals(out, doc.Invoice)
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send [invoice.yaml]",
	Short: "Email an invoice to the client with a signing link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := invoiceArg(args[0])
		if err != nil {
			return err
		}

		res, err := appInstance.InvoiceService.Email(ctx, inv)
		if err != nil {
			return explain(err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Invoice ID:   %s\n", res.Link.InvoiceID)
		fmt.Fprintf(out, "Signing link: %s\n", res.Link.URL)
		if res.Delivered {
			fmt.Fprintf(out, "✓ Invoice emailed to %s\n", res.Invoice.ClientEmail)
			return nil
		}

		fmt.Fprintf(out, "Email could not be sent (%v). Copy this message instead:\n\n", res.DeliveryErr)
		fmt.Fprintln(out, res.Template)
		return nil
	},
}

var templateCmd = &cobra.Command{
	Use:   "template [invoice.yaml]",
	Short: "Print the email text for an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := invoiceArg(args[0])
		if err != nil {
			return err
		}

		res, err := appInstance.InvoiceService.CopyTemplate(ctx, inv)
		if err != nil {
			return explain(err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), res.Template)

		if copyText, _ := cmd.Flags().GetBool("copy"); copyText {
			if err := clipboard.WriteAll(res.Template); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "✓ Copied to clipboard")
		}
		return nil
	},
}

func init() {
	totalsCmd.Flags().Float64("rate", 0, "Hourly rate")
	totalsCmd.Flags().Float64("hours", 0, "Total hours")
	totalsCmd.Flags().Float64("tax", 0, "Tax rate in percent (10 = 10%)")

	generateCmd.Flags().StringP("output", "o", "", "Also write the PDF to this path")

	templateCmd.Flags().Bool("copy", false, "Copy the template to the clipboard")
}
