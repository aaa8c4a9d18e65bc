package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

type totalsRequest struct {
	HourlyRate float64 `json:"hourlyRate"`
	TotalHours float64 `json:"totalHours"`
	TaxRate    float64 `json:"taxRate"`
}

type totalsResponse struct {
	TotalAmount float64 `json:"totalAmount"`
	TaxAmount   float64 `json:"taxAmount"`
	FinalAmount float64 `json:"finalAmount"`
}

// newTotalsResponse reports zero amounts when they overflowed; JSON has no
// encoding for NaN or infinities
func newTotalsResponse(t domain.Totals) totalsResponse {
	if !t.Finite() {
		return totalsResponse{}
	}
	return totalsResponse{TotalAmount: t.TotalAmount, TaxAmount: t.TaxAmount, FinalAmount: t.FinalAmount}
}

type validateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
	totalsResponse
}

// sendResponse is returned by the email and template actions
type sendResponse struct {
	InvoiceID   string  `json:"invoiceId"`
	Filename    string  `json:"filename"`
	SigningLink string  `json:"signingLink"`
	Provider    string  `json:"provider"`
	EnvelopeID  string  `json:"envelopeId,omitempty"`
	FinalAmount float64 `json:"finalAmount"`
	Delivered   bool    `json:"delivered"`
	Template    string  `json:"template,omitempty"`
	DeliveryErr string  `json:"deliveryError,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) decodeInvoice(w http.ResponseWriter, r *http.Request) (*domain.Invoice, bool) {
	inv := domain.NewInvoice()
	if err := decodeJSON(w, r, inv); err != nil {
		s.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	inv.Recalculate()
	return inv, true
}

// writeServiceError maps workflow errors onto HTTP statuses
func (s *Server) writeServiceError(w http.ResponseWriter, err error, action string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "Invoice is incomplete",
			Code:   http.StatusUnprocessableEntity,
			Fields: verr.Fields,
		})
		return
	}
	s.logger.Error("invoice action failed", zap.String("action", action), zap.Error(err))
	s.writeJSONError(w, "Failed to "+action+" invoice", http.StatusInternalServerError)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	t := domain.CalculateTotals(req.HourlyRate, req.TotalHours, req.TaxRate)
	if !t.Finite() {
		s.writeJSONError(w, "Amounts are out of range", http.StatusUnprocessableEntity)
		return
	}
	s.writeJSON(w, http.StatusOK, newTotalsResponse(t))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.decodeInvoice(w, r)
	if !ok {
		return
	}
	errs := inv.Validate()
	s.writeJSON(w, http.StatusOK, validateResponse{
		Valid:  len(errs) == 0,
		Errors: errs,
		totalsResponse: newTotalsResponse(domain.Totals{
			TotalAmount: inv.TotalAmount,
			TaxAmount:   inv.TaxAmount,
			FinalAmount: inv.FinalAmount,
		}),
	})
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.decodeInvoice(w, r)
	if !ok {
		return
	}

	doc, err := s.invoices.Download(r.Context(), inv)
	if err != nil {
		s.writeServiceError(w, err, "render")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	if doc.Location != "" {
		w.Header().Set("X-Invoice-Location", doc.Location)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.PDF); err != nil {
		s.logger.Warn("failed to write pdf", zap.Error(err))
	}
}

func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.decodeInvoice(w, r)
	if !ok {
		return
	}
	res, err := s.invoices.Email(r.Context(), inv)
	if err != nil {
		s.writeServiceError(w, err, "email")
		return
	}
	s.writeJSON(w, http.StatusOK, newSendResponse(res))
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.decodeInvoice(w, r)
	if !ok {
		return
	}
	res, err := s.invoices.CopyTemplate(r.Context(), inv)
	if err != nil {
		s.writeServiceError(w, err, "prepare")
		return
	}
	s.writeJSON(w, http.StatusOK, newSendResponse(res))
}

func newSendResponse(res *service.SendResult) sendResponse {
	out := sendResponse{
		InvoiceID:   res.Link.InvoiceID,
		Filename:    res.Filename,
		SigningLink: res.Link.URL,
		Provider:    res.Link.Provider,
		EnvelopeID:  res.Link.EnvelopeID,
		FinalAmount: res.Invoice.FinalAmount,
		Delivered:   res.Delivered,
		Template:    res.Template,
	}
	if res.DeliveryErr != nil {
		out.DeliveryErr = res.DeliveryErr.Error()
	}
	return out
}

func (s *Server) handleListSignatures(w http.ResponseWriter, r *http.Request) {
	sigs := s.signatures.List(r.Context())
	if sigs == nil {
		sigs = []*domain.Signature{}
	}
	s.writeJSON(w, http.StatusOK, sigs)
}

func (s *Server) handleGetSignature(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sig := s.signatures.Find(r.Context(), id)
	if sig == nil {
		s.writeJSONError(w, "Signature not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, sig)
}

func (s *Server) handleEnvelopeStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.signatures.EnvelopeStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEnvelopeNotFound) {
			s.writeJSONError(w, "Envelope not found", http.StatusNotFound)
			return
		}
		s.logger.Error("failed to get envelope status", zap.String("invoice_id", id), zap.Error(err))
		s.writeJSONError(w, "Failed to get envelope status", http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
