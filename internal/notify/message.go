package notify

import (
	"fmt"
	"strings"

	"github.com/andy/invoicedesk/internal/domain"
)

// Message is the subject and plain-text body of an invoice email
type Message struct {
	Subject string
	Body    string
}

// FormatCurrency renders an amount as $1234.50
func FormatCurrency(v float64) string {
	return domain.FormatMoney(v)
}

// Compose builds the invoice email for inv. signingLink may be empty.
func Compose(inv *domain.Invoice, signingLink string) Message {
	return Message{
		Subject: subject(inv),
		Body:    body(inv, signingLink),
	}
}

// Template returns the copyable text used when no relay can deliver the email
func Template(inv *domain.Invoice, signingLink string) string {
	return fmt.Sprintf("Subject: %s\n\n%s", subject(inv), body(inv, signingLink))
}

func subject(inv *domain.Invoice) string {
	return fmt.Sprintf("Invoice for %s - %s", inv.ProjectTitle, inv.FreelancerName)
}

func body(inv *domain.Invoice, signingLink string) string {
	var linkLine, phoneLine string
	if signingLink != "" {
		linkLine = "To sign this invoice digitally, please click here: " + signingLink
	}
	if inv.FreelancerPhone != "" {
		phoneLine = "Phone: " + inv.FreelancerPhone
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", inv.ClientName)
	fmt.Fprintf(&sb, "Thank you for choosing my services for your project: \"%s\".\n\n", inv.ProjectTitle)
	sb.WriteString("I have prepared your invoice for the work completed. Please find the details below:\n\n")
	fmt.Fprintf(&sb, "Project: %s\n", inv.ProjectTitle)
	fmt.Fprintf(&sb, "Service: %s\n", inv.ServiceDescription)
	fmt.Fprintf(&sb, "Total Amount: %s\n", FormatCurrency(inv.FinalAmount))
	fmt.Fprintf(&sb, "Due Date: %s\n\n", inv.DueDate)
	sb.WriteString(linkLine + "\n\n")
	sb.WriteString("If you have any questions about this invoice, please don't hesitate to contact me.\n\n")
	sb.WriteString("Best regards,\n")
	sb.WriteString(inv.FreelancerName + "\n")
	sb.WriteString(inv.FreelancerEmail + "\n")
	sb.WriteString(phoneLine)

	return strings.TrimSpace(sb.String())
}
