package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/andy/invoicedesk/internal/domain"
)

// A4 in points
const (
	pageWidth  = 595.28
	pageHeight = 841.89
)

var (
	ErrRenderFailed = errors.New("failed to render invoice")
	ErrNotFinalized = errors.New("invoice must be finalized before rendering")
)

type rgb struct{ r, g, b int }

var (
	primaryColor   = rgb{51, 51, 51}
	secondaryColor = rgb{102, 102, 102}
	accentColor    = rgb{26, 102, 204}
)

// Renderer turns a finalized invoice into a printable document
type Renderer interface {
	Render(ctx context.Context, inv *domain.Invoice) ([]byte, error)
}

// PDFRenderer draws the single-page A4 invoice layout
type PDFRenderer struct{}

// NewPDFRenderer creates a new PDF renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render draws inv and returns the PDF bytes. Output is byte-identical for
// identical finalized invoices since the creation date is pinned to FinalizedAt.
func (r *PDFRenderer) Render(ctx context.Context, inv *domain.Invoice) ([]byte, error) {
	if inv == nil || !inv.IsFinalized() {
		return nil, ErrNotFinalized
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetCreationDate(inv.FinalizedAt)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Invoice for "+inv.ProjectTitle, true)
	pdf.SetAuthor(inv.FreelancerName, true)
	pdf.AddPage()

	p := &painter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	p.draw(inv)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

// painter wraps gofpdf with top-down baseline coordinates
type painter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (p *painter) text(s string, x, y, size float64, bold bool, c rgb) {
	style := ""
	if bold {
		style = "B"
	}
	p.pdf.SetFont("Helvetica", style, size)
	p.pdf.SetTextColor(c.r, c.g, c.b)
	p.pdf.Text(x, y, p.tr(s))
}

func (p *painter) line(x1, y1, x2, y2, width float64, c rgb) {
	p.pdf.SetDrawColor(c.r, c.g, c.b)
	p.pdf.SetLineWidth(width)
	p.pdf.Line(x1, y1, x2, y2)
}

func (p *painter) draw(inv *domain.Invoice) {
	const w, h = pageWidth, pageHeight

	// Header
	p.text("INVOICE", w/2-50, 50, 24, true, accentColor)
	p.line(50, 80, w-50, 80, 2, accentColor)

	// From
	p.text("From:", 50, 120, 12, true, primaryColor)
	p.text(inv.FreelancerName, 50, 140, 14, true, primaryColor)
	p.optional(inv.FreelancerEmail, 50, 160)
	p.optional(inv.FreelancerPhone, 50, 175)
	p.optional(inv.FreelancerAddress, 50, 190)
	p.optional(inv.FreelancerWebsite, 50, 205)

	// Bill To
	p.text("Bill To:", w-200, 120, 12, true, primaryColor)
	p.text(inv.ClientName, w-200, 140, 14, true, primaryColor)
	p.optional(inv.ClientCompany, w-200, 160)
	p.text(inv.ClientEmail, w-200, 175, 10, false, primaryColor)
	p.optional(inv.ClientAddress, w-200, 190)

	// Invoice details
	p.text("Invoice Details:", 50, 250, 12, true, primaryColor)
	p.line(50, 270, w-50, 270, 1, primaryColor)
	details := []struct {
		label, value string
	}{
		{"Project:", inv.ProjectTitle},
		{"Description:", inv.ServiceDescription},
		{"Start Date:", inv.ProjectStartDate},
		{"End Date:", inv.ProjectEndDate},
		{"Due Date:", inv.DueDate},
	}
	for n, d := range details {
		y := 290 + float64(n)*20
		p.text(d.label, 50, y, 10, true, primaryColor)
		p.text(d.value, 120, y, 10, false, primaryColor)
	}

	// Service table
	p.text("Service Details:", 50, 420, 12, true, primaryColor)
	p.line(50, 440, w-50, 440, 1, primaryColor)
	p.text("Description", 50, 460, 10, true, primaryColor)
	p.text("Hours", 300, 460, 10, true, primaryColor)
	p.text("Rate", 380, 460, 10, true, primaryColor)
	p.text("Amount", 460, 460, 10, true, primaryColor)
	p.line(50, 470, w-50, 470, 1, primaryColor)
	p.text(inv.ServiceDescription, 50, 490, 10, false, primaryColor)
	p.text(strconv.FormatFloat(inv.TotalHours, 'f', -1, 64), 300, 490, 10, false, primaryColor)
	p.text(money(inv.HourlyRate), 380, 490, 10, false, primaryColor)
	p.text(money(inv.TotalAmount), 460, 490, 10, false, primaryColor)
	p.line(50, 500, w-50, 500, 1, primaryColor)

	// Totals
	const totalsY = 540
	p.text("Subtotal:", w-200, totalsY, 10, true, primaryColor)
	p.text(money(inv.TotalAmount), w-100, totalsY, 10, false, primaryColor)
	p.text("Tax:", w-200, totalsY+20, 10, true, primaryColor)
	p.text(money(inv.TaxAmount), w-100, totalsY+20, 10, false, primaryColor)
	p.line(w-200, totalsY+30, w-50, totalsY+30, 1, primaryColor)
	p.text("Total:", w-200, totalsY+50, 12, true, primaryColor)
	p.text(money(inv.FinalAmount), w-100, totalsY+50, 12, true, primaryColor)

	if inv.PaymentTerms != "" {
		p.text("Payment Terms:", 50, totalsY+100, 10, true, primaryColor)
		p.text(inv.PaymentTerms, 50, totalsY+120, 10, false, primaryColor)
	}
	if inv.Notes != "" {
		p.text("Notes:", 50, totalsY+160, 10, true, primaryColor)
		p.text(inv.Notes, 50, totalsY+180, 10, false, primaryColor)
	}

	// Footer
	p.line(50, h-100, w-50, h-100, 1, primaryColor)
	p.text("Thank you for your business!", w/2-80, h-120, 10, false, secondaryColor)
}

func (p *painter) optional(s string, x, y float64) {
	if s == "" {
		return
	}
	p.text(s, x, y, 10, false, primaryColor)
}

func money(v float64) string {
	return domain.FormatMoney(v)
}
