package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/service"
)

const signedAtLayout = "2006-01-02 15:04"

var signCmd = &cobra.Command{
	Use:   "sign [invoice_id]",
	Short: "Record a client signature for an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		mark, _ := cmd.Flags().GetString("signature")
		if mark == "" {
			mark = name
		}

		sig, err := appInstance.SignatureService.Sign(ctx, service.SignRequest{
			InvoiceID:   args[0],
			ClientName:  name,
			ClientEmail: email,
			Signature:   mark,
		})
		if err != nil {
			return fmt.Errorf("failed to sign invoice: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Invoice %s signed by %s <%s>\n", sig.InvoiceID, sig.ClientName, sig.ClientEmail)
		return nil
	},
}

var signaturesCmd = &cobra.Command{
	Use:   "signatures",
	Short: "Inspect recorded signatures",
}

var signaturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded signatures",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()

		sigs := appInstance.SignatureService.List(ctx)
		if len(sigs) == 0 {
			fmt.Fprintln(out, "No signatures found")
			return nil
		}

		// Print table header
		fmt.Fprintf(out, "%-32s %-22s %-28s %-16s\n", "Invoice", "Client", "Email", "Signed")
		fmt.Fprintln(out, "------------------------------------------------------------------------------------------------------")

		for _, sig := range sigs {
			fmt.Fprintf(out, "%-32s %-22s %-28s %-16s\n",
				truncate(sig.InvoiceID, 32),
				truncate(sig.ClientName, 22),
				truncate(sig.ClientEmail, 28),
				sig.SignedAt.Local().Format(signedAtLayout),
			)
		}

		fmt.Fprintf(out, "\nTotal: %d signature(s)\n", len(sigs))
		return nil
	},
}

var signaturesShowCmd = &cobra.Command{
	Use:   "show [invoice_id]",
	Short: "Show the signature recorded for an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		sig := appInstance.SignatureService.Find(ctx, args[0])
		if sig == nil {
			return fmt.Errorf("no signature recorded for %s", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Invoice:   %s\n", sig.InvoiceID)
		fmt.Fprintf(out, "Signed by: %s\n", sig.ClientName)
		fmt.Fprintf(out, "Email:     %s\n", sig.ClientEmail)
		fmt.Fprintf(out, "Signature: %s\n", sig.Signature)
		fmt.Fprintf(out, "Date:      %s\n", sig.SignedAt.Local().Format(signedAtLayout))
		return nil
	},
}

var signaturesStatusCmd = &cobra.Command{
	Use:   "status [invoice_id]",
	Short: "Show the e-signature envelope status for an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		rec, err := appInstance.SignatureService.EnvelopeStatus(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get envelope status: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Envelope %s (%s): %s\n", rec.EnvelopeID, rec.Provider, rec.Status)
		return nil
	},
}

func init() {
	signaturesCmd.AddCommand(signaturesListCmd)
	signaturesCmd.AddCommand(signaturesShowCmd)
	signaturesCmd.AddCommand(signaturesStatusCmd)

	signCmd.Flags().String("name", "", "Client name (required)")
	signCmd.Flags().String("email", "", "Client email (required)")
	signCmd.Flags().String("signature", "", "Typed signature (defaults to the name)")
	signCmd.MarkFlagRequired("name")
	signCmd.MarkFlagRequired("email")
}
