package account

import (
	"context"
	"fmt"

	"claims-payment-backend/internal/models"
	"claims-payment-backend/internal/services/upload"

	"go.uber.org/zap"
)

// uploadStore adapts the repositories to the upload pipeline's Store.
type uploadStore struct {
	payments  PaymentStore
	providers ProviderLookup
	batches   BatchLookup
	audit     AuditRecorder
	log       *zap.Logger
}

func (s *uploadStore) FindProvider(ctx context.Context, hcpcode, name string) (*models.ProviderRecord, error) {
	found, err := s.providers.FindByCodeAndName(ctx, hcpcode, name)
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("%w: hospital %s with HCP code %s", upload.ErrMultipleMatches, name, hcpcode)
}

func (s *uploadStore) FindBatch(ctx context.Context, batchnumber string) (*models.BatchRecord, error) {
	found, err := s.batches.FindByBatchNumber(ctx, batchnumber)
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("%w: batch %s", upload.ErrMultipleMatches, batchnumber)
}

func (s *uploadStore) FindExistingPayment(ctx context.Context, hcpcode, batchnumber string) (*models.PaymentRecord, error) {
	found, err := s.payments.FindByHCPAndBatch(ctx, hcpcode, batchnumber)
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("%w: payment for HCP %s and batch %s", upload.ErrMultipleMatches, hcpcode, batchnumber)
}

func (s *uploadStore) InsertPayment(ctx context.Context, record *models.PaymentRecord) (*models.PaymentRecord, error) {
	stored, err := s.payments.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if !stored {
		return nil, nil
	}

	entry := &models.PaymentAuditLog{
		PaymentID:   record.ID,
		Action:      models.AuditActionInsert,
		HCPCode:     record.HCPCode,
		BatchNumber: record.BatchNumber,
		PerformedBy: record.UploadedBy,
		Reason:      "bulk upload",
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn("Failed to record payment audit log", zap.String("payment_id", record.ID.String()), zap.Error(err))
	}
	return record, nil
}
