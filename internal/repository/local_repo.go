package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/kvstore"
)

// Fixed keys in the local key-value store
const (
	SignaturesKey = "invoicedesk_signatures"
	EnvelopesKey  = "invoicedesk_envelopes"
)

// LocalRepo keeps signatures and envelopes as JSON lists in a kvstore.
// An absent or corrupt value reads as an empty list.
type LocalRepo struct {
	store  *kvstore.Store
	logger *zap.Logger
}

// NewLocalRepo creates a new LocalRepo
func NewLocalRepo(store *kvstore.Store, logger *zap.Logger) *LocalRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalRepo{store: store, logger: logger}
}

// Append adds a signature to the end of the list
func (r *LocalRepo) Append(ctx context.Context, sig *domain.Signature) error {
	err := r.store.Update(SignaturesKey, func(cur []byte) ([]byte, error) {
		sigs := r.decodeSignatures(cur)
		sigs = append(sigs, sig)
		return json.Marshal(sigs)
	})
	if err != nil {
		return fmt.Errorf("failed to save signature: %w", err)
	}
	return nil
}

// List returns every signature in recording order
func (r *LocalRepo) List(ctx context.Context) ([]*domain.Signature, error) {
	data, err := r.store.Get(SignaturesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}
	return r.decodeSignatures(data), nil
}

// FindByInvoiceID returns the first signature recorded for invoiceID
func (r *LocalRepo) FindByInvoiceID(ctx context.Context, invoiceID string) (*domain.Signature, error) {
	sigs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, sig := range sigs {
		if sig.InvoiceID == invoiceID {
			return sig, nil
		}
	}
	return nil, nil
}

// SaveEnvelope appends a new envelope record or updates an existing one in place
func (r *LocalRepo) SaveEnvelope(ctx context.Context, rec *EnvelopeRecord) error {
	err := r.store.Update(EnvelopesKey, func(cur []byte) ([]byte, error) {
		var recs []*EnvelopeRecord
		if len(cur) > 0 {
			if err := json.Unmarshal(cur, &recs); err != nil {
				r.logger.Warn("discarding corrupt envelope list", zap.Error(err))
				recs = nil
			}
		}
		// a status update keeps the envelope's place in the list
		for i, existing := range recs {
			if existing.EnvelopeID == rec.EnvelopeID {
				recs[i] = rec
				return json.Marshal(recs)
			}
		}
		recs = append(recs, rec)
		return json.Marshal(recs)
	})
	if err != nil {
		return fmt.Errorf("failed to save envelope: %w", err)
	}
	return nil
}

// FindEnvelope returns the most recent envelope for invoiceID
func (r *LocalRepo) FindEnvelope(ctx context.Context, invoiceID string) (*EnvelopeRecord, error) {
	data, err := r.store.Get(EnvelopesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read envelopes: %w", err)
	}
	var recs []*EnvelopeRecord
	if len(data) > 0 {
		if err := json.Unmarshal(data, &recs); err != nil {
			r.logger.Warn("corrupt envelope list", zap.Error(err))
			return nil, nil
		}
	}
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i].InvoiceID == invoiceID {
			return recs[i], nil
		}
	}
	return nil, nil
}

func (r *LocalRepo) decodeSignatures(data []byte) []*domain.Signature {
	if len(data) == 0 {
		return []*domain.Signature{}
	}
	var sigs []*domain.Signature
	if err := json.Unmarshal(data, &sigs); err != nil {
		r.logger.Warn("corrupt signature list, treating as empty", zap.Error(err))
		return []*domain.Signature{}
	}
	if sigs == nil {
		sigs = []*domain.Signature{}
	}
	return sigs
}
