// Package server serves the client signing page and the invoice JSON API.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Server wires the HTTP routes to the invoice and signature services
type Server struct {
	router     *mux.Router
	invoices   service.InvoiceService
	signatures service.SignatureService
	logger     *zap.Logger
}

// ErrorResponse is the body of every JSON error
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   int               `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// New creates a server. logger may be nil.
func New(invoices service.InvoiceService, signatures service.SignatureService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:     mux.NewRouter(),
		invoices:   invoices,
		signatures: signatures,
		logger:     logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealthCheck).Methods(http.MethodGet)

	s.router.HandleFunc("/sign-invoice/{id}", s.handleSignPage).Methods(http.MethodGet)
	s.router.HandleFunc("/sign-invoice/{id}", s.handleSignSubmit).Methods(http.MethodPost)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/totals", s.handleTotals).Methods(http.MethodPost)
	api.HandleFunc("/invoices/validate", s.handleValidate).Methods(http.MethodPost)
	api.HandleFunc("/invoices/pdf", s.handlePDF).Methods(http.MethodPost)
	api.HandleFunc("/invoices/email", s.handleEmail).Methods(http.MethodPost)
	api.HandleFunc("/invoices/template", s.handleTemplate).Methods(http.MethodPost)
	api.HandleFunc("/signatures", s.handleListSignatures).Methods(http.MethodGet)
	api.HandleFunc("/signatures/{id}", s.handleGetSignature).Methods(http.MethodGet)
	api.HandleFunc("/envelopes/{id}", s.handleEnvelopeStatus).Methods(http.MethodGet)

	s.router.Use(s.logRequests)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, ErrorResponse{Error: message, Code: status})
}
