package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
)

const signedDateLayout = "1/2/2006"

type signPage struct {
	Title       string
	InvoiceID   string
	ClientName  string
	ClientEmail string
	Signature   string
	Error       string
	SignedDate  string
}

func confirmation(sig *domain.Signature) signPage {
	return signPage{
		Title:       "Invoice Signed",
		InvoiceID:   sig.InvoiceID,
		ClientName:  sig.ClientName,
		ClientEmail: sig.ClientEmail,
		SignedDate:  sig.SignedAt.Local().Format(signedDateLayout),
	}
}

// handleSignPage shows the signing form, or the confirmation once signed
func (s *Server) handleSignPage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if sig := s.signatures.Find(r.Context(), id); sig != nil {
		s.renderPage(w, http.StatusOK, "signed.html", confirmation(sig))
		return
	}
	s.renderPage(w, http.StatusOK, "sign.html", signPage{Title: "Sign Invoice", InvoiceID: id})
}

func (s *Server) handleSignSubmit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, "sign.html", signPage{
			Title:     "Sign Invoice",
			InvoiceID: id,
			Error:     "Could not read the submitted form.",
		})
		return
	}

	req := service.SignRequest{
		InvoiceID:   id,
		ClientName:  r.PostForm.Get("clientName"),
		ClientEmail: r.PostForm.Get("clientEmail"),
		Signature:   r.PostForm.Get("signature"),
	}

	sig, err := s.signatures.Sign(r.Context(), req)
	if err != nil {
		page := signPage{
			Title:       "Sign Invoice",
			InvoiceID:   id,
			ClientName:  req.ClientName,
			ClientEmail: req.ClientEmail,
			Signature:   req.Signature,
		}
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrSignatureIncomplete), errors.Is(err, service.ErrMissingInvoiceID):
			status = http.StatusBadRequest
			page.Error = "Please fill in your name, email and signature."
		default:
			page.Error = "Your signature could not be saved. Please try again."
		}
		s.renderPage(w, status, "sign.html", page)
		return
	}

	s.renderPage(w, http.StatusOK, "signed.html", confirmation(sig))
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data signPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
	}
}
