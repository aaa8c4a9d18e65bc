package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/invoicedesk/internal/db"
	"github.com/andy/invoicedesk/internal/domain"
)

// SignatureRepo is a SQL implementation of SignatureStore and EnvelopeStore.
// It works against both the sqlcipher and postgres dialects.
type SignatureRepo struct {
	db *db.DB
}

// NewSignatureRepo creates a new SignatureRepo
func NewSignatureRepo(database *db.DB) *SignatureRepo {
	return &SignatureRepo{db: database}
}

// Append inserts a signature
func (r *SignatureRepo) Append(ctx context.Context, sig *domain.Signature) error {
	query := `
		INSERT INTO signatures (invoice_id, client_name, client_email, signature, signed_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		sig.InvoiceID,
		sig.ClientName,
		sig.ClientEmail,
		sig.Signature,
		formatTime(sig.SignedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save signature: %w", err)
	}
	return nil
}

// List returns every signature in insertion order
func (r *SignatureRepo) List(ctx context.Context) ([]*domain.Signature, error) {
	query := `
		SELECT invoice_id, client_name, client_email, signature, signed_at
		FROM signatures
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}
	defer rows.Close()

	sigs := make([]*domain.Signature, 0)
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signatures: %w", err)
	}

	return sigs, nil
}

// FindByInvoiceID returns the earliest signature for invoiceID
func (r *SignatureRepo) FindByInvoiceID(ctx context.Context, invoiceID string) (*domain.Signature, error) {
	query := `
		SELECT invoice_id, client_name, client_email, signature, signed_at
		FROM signatures
		WHERE invoice_id = ?
		ORDER BY id
		LIMIT 1
	`

	sig, err := scanSignature(r.db.QueryRowContext(ctx, r.db.Rebind(query), invoiceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// SaveEnvelope inserts or updates an envelope record
func (r *SignatureRepo) SaveEnvelope(ctx context.Context, rec *EnvelopeRecord) error {
	query := `
		INSERT INTO envelopes (envelope_id, invoice_id, provider, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (envelope_id) DO UPDATE SET status = excluded.status
	`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), rec.EnvelopeID, rec.InvoiceID, rec.Provider, rec.Status)
	if err != nil {
		return fmt.Errorf("failed to save envelope: %w", err)
	}
	return nil
}

// FindEnvelope returns the most recently created envelope for invoiceID
func (r *SignatureRepo) FindEnvelope(ctx context.Context, invoiceID string) (*EnvelopeRecord, error) {
	query := `
		SELECT envelope_id, invoice_id, provider, status
		FROM envelopes
		WHERE invoice_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	rec := &EnvelopeRecord{}
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), invoiceID).Scan(
		&rec.EnvelopeID,
		&rec.InvoiceID,
		&rec.Provider,
		&rec.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get envelope: %w", err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSignature(s scanner) (*domain.Signature, error) {
	sig := &domain.Signature{}
	var signedAt string

	err := s.Scan(
		&sig.InvoiceID,
		&sig.ClientName,
		&sig.ClientEmail,
		&sig.Signature,
		&signedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan signature: %w", err)
	}

	if sig.SignedAt, err = parseTime(signedAt); err != nil {
		return nil, fmt.Errorf("failed to parse signed_at: %w", err)
	}
	return sig, nil
}
