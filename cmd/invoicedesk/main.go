package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Help and config commands skip app initialization (which may prompt)
	if cli.NeedsApp(os.Args[1:]) {
		a, err := app.New(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize app: %v\n", err)
			return 1
		}
		defer func() {
			if err := a.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close app: %v\n", err)
			}
		}()
		cli.SetApp(a)
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
