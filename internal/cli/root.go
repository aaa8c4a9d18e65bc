package cli

import (
	"github.com/andy/invoicedesk/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "invoicedesk",
	Short: "Invoices, e-signatures and client emails for freelancers",
	Long: `Invoicedesk helps freelancers fill in an invoice, render it to PDF,
email it to the client with a signing link, and collect the signature.

By default, running invoicedesk without arguments launches the interactive TUI.
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

// NeedsApp reports whether the command line requires an initialized App.
// Help and config commands run without one so they never prompt.
func NeedsApp(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" || a == "help" {
			return false
		}
	}
	if len(args) > 0 && args[0] == "config" {
		return false
	}
	return true
}

func init() {
	// Add all subcommands
	rootCmd.AddCommand(totalsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(signaturesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tuiCmd)
}
