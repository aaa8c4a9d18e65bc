package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the client signing page and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = appInstance.Config.Server.Addr
		}

		srv := server.New(
			appInstance.InvoiceService,
			appInstance.SignatureService,
			appInstance.Logger.Named("http"),
		)

		fmt.Fprintf(cmd.OutOrStdout(), "Signing links point to %s/sign-invoice/<id>\n", appInstance.Config.Server.Origin)
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s (Ctrl+C to stop)\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr)")
}
