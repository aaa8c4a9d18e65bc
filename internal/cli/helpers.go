package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/notify"
	"github.com/andy/invoicedesk/internal/service"
)

// loadInvoice reads a YAML invoice from path ("-" for stdin) on top of defaults
func loadInvoice(path string, defaults *domain.Invoice, stdin io.Reader) (*domain.Invoice, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice: %w", err)
	}

	inv := defaults.Clone()
	if err := yaml.Unmarshal(data, inv); err != nil {
		return nil, fmt.Errorf("failed to parse invoice %s: %w", path, err)
	}
	inv.Recalculate()
	return inv, nil
}

func invoiceArg(path string) (*domain.Invoice, error) {
	return loadInvoice(path, appInstance.InvoiceDefaults(), os.Stdin)
}

func writeTotals(w io.Writer, inv *domain.Invoice) {
	fmt.Fprintf(w, "Subtotal: %s\n", notify.FormatCurrency(inv.TotalAmount))
	fmt.Fprintf(w, "Tax (%g%%): %s\n", inv.TaxRate, notify.FormatCurrency(inv.TaxAmount))
	fmt.Fprintf(w, "Total: %s\n", notify.FormatCurrency(inv.FinalAmount))
}

func writeFieldErrors(w io.Writer, errs domain.FieldErrors) {
	for _, field := range errs.Fields() {
		fmt.Fprintf(w, "  %-20s %s\n", field, errs[field])
	}
}

// explain prints field errors for a ValidationError and returns a short error
func explain(err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(os.Stderr, "Invoice is incomplete:")
		writeFieldErrors(os.Stderr, verr.Fields)
		return fmt.Errorf("%d field(s) need attention", len(verr.Fields))
	}
	return err
}

// truncate shortens s to maxLen runes, marking the cut with "..."
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
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
