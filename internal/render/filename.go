package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename returns invoice-<client slug>-<YYYY-MM-DD>.pdf for the given date
func Filename(inv *domain.Invoice, date time.Time) string {
	return fmt.Sprintf("invoice-%s-%s.pdf", Slug(inv.ClientName), date.Format(domain.DateLayout))
}

// Slug lowercases s and replaces whitespace runs and path separators with a dash
func Slug(s string) string {
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = strings.NewReplacer("/", "-", `\`, "-").Replace(s)
	return strings.ToLower(s)
}
