package upload

import (
	"context"
	"errors"

	"claims-payment-backend/internal/models"

	"github.com/google/uuid"
)

// Store is the storage a Validator needs. Find* return (nil, nil) when
// nothing matches and an error wrapping ErrMultipleMatches when more than one
// record matches. InsertPayment returns the stored row; a nil row with a nil
// error means the backend confirmed nothing.
type Store interface {
	FindProvider(ctx context.Context, hcpcode, name string) (*models.ProviderRecord, error)
	FindBatch(ctx context.Context, batchnumber string) (*models.BatchRecord, error)
	FindExistingPayment(ctx context.Context, hcpcode, batchnumber string) (*models.PaymentRecord, error)
	InsertPayment(ctx context.Context, record *models.PaymentRecord) (*models.PaymentRecord, error)
}

// Attribution is stamped onto every record an upload inserts.
type Attribution struct {
	UploadID   *uuid.UUID
	UploadedBy string
}

type Validator struct {
	store Store
}

func NewValidator(store Store) *Validator {
	return &Validator{store: store}
}

// Validate runs the row checks in order, stopping at the first failure, and
// inserts the row when all of them pass. Any failure is a *Rejection.
func (v *Validator) Validate(ctx context.Context, row UploadRow, attr Attribution) (*models.PaymentRecord, error) {
	provider, err := v.store.FindProvider(ctx, row.HCPCode, row.HospName)
	if err != nil {
		return nil, storageRejection(row, err)
	}
	if r := checkProvider(row, provider); r != nil {
		return nil, r
	}

	batch, err := v.store.FindBatch(ctx, row.BatchNumber)
	if err != nil {
		return nil, storageRejection(row, err)
	}
	if r := checkBatch(row, batch); r != nil {
		return nil, r
	}
	if r := checkBillAmount(row, batch); r != nil {
		return nil, r
	}
	if r := checkBank(row); r != nil {
		return nil, r
	}
	if r := checkApprovedAmount(row); r != nil {
		return nil, r
	}

	existing, err := v.store.FindExistingPayment(ctx, row.HCPCode, row.BatchNumber)
	switch {
	case errors.Is(err, ErrMultipleMatches):
		// More than one stored copy is still a duplicate.
		return nil, checkDuplicate(row, true)
	case err != nil:
		return nil, storageRejection(row, err)
	}
	if r := checkDuplicate(row, existing != nil); r != nil {
		return nil, r
	}

	record, r := buildRecord(row)
	if r != nil {
		return nil, r
	}
	record.UploadID = attr.UploadID
	record.UploadedBy = attr.UploadedBy

	inserted, err := v.store.InsertPayment(ctx, record)
	if err != nil {
		return nil, storageRejection(row, err)
	}
	if inserted == nil {
		return nil, reject(row.Position, CategoryStorage, "Insert returned no data")
	}
	return inserted, nil
}

func storageRejection(row UploadRow, err error) *Rejection {
	return reject(row.Position, CategoryStorage, "Database error (%s)", err.Error())
}
