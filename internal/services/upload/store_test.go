package upload

import (
	"context"
	"fmt"

	"claims-payment-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store with the same lookup contract as the
// database adapter.
type memStore struct {
	providers []models.ProviderRecord
	batches   []models.BatchRecord
	payments  []models.PaymentRecord

	insertErr error
	insertNil bool
	inserts   int
	lookupErr error
	calls     []string
	// onProvider runs inside FindProvider, while a row is in flight.
	onProvider func()
}

func (s *memStore) FindProvider(ctx context.Context, hcpcode, name string) (*models.ProviderRecord, error) {
	s.calls = append(s.calls, "provider")
	if s.onProvider != nil {
		s.onProvider()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	var found []models.ProviderRecord
	for _, p := range s.providers {
		if p.HCPCode == hcpcode && p.Name == name {
			found = append(found, p)
		}
	}
	return pickOne(found, "myhospitals")
}

func (s *memStore) FindBatch(ctx context.Context, batchnumber string) (*models.BatchRecord, error) {
	s.calls = append(s.calls, "batch")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found []models.BatchRecord
	for _, b := range s.batches {
		if b.BatchNumber == batchnumber {
			found = append(found, b)
		}
	}
	return pickOne(found, "mybatch")
}

func (s *memStore) FindExistingPayment(ctx context.Context, hcpcode, batchnumber string) (*models.PaymentRecord, error) {
	s.calls = append(s.calls, "payment")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found []models.PaymentRecord
	for _, p := range s.payments {
		if p.HCPCode == hcpcode && p.BatchNumber == batchnumber {
			found = append(found, p)
		}
	}
	return pickOne(found, "myaccount")
}

func (s *memStore) InsertPayment(ctx context.Context, record *models.PaymentRecord) (*models.PaymentRecord, error) {
	s.calls = append(s.calls, "insert")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	if s.insertNil {
		return nil, nil
	}
	stored := *record
	stored.ID = uuid.New()
	s.payments = append(s.payments, stored)
	s.inserts++
	return &stored, nil
}

func pickOne[T any](found []T, table string) (*T, error) {
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("%w in %s", ErrMultipleMatches, table)
}

func newFixtureStore() *memStore {
	return &memStore{
		providers: []models.ProviderRecord{
			{ID: uuid.New(), HCPCode: "AB/123456/PHIS", Name: "ABC CLINIC"},
		},
		batches: []models.BatchRecord{
			{ID: uuid.New(), BatchNumber: "PHIS/654321/2024", BillAmount: "50000"},
		},
	}
}

func validRow() UploadRow {
	return UploadRow{
		Position:       1,
		HCPCode:        "AB/123456/PHIS",
		BatchNumber:    "PHIS/654321/2024",
		HospName:       "ABC CLINIC",
		Narration:      "March claims",
		NoOfEncounter:  "12",
		BillAmount:     "50,000",
		ApprovedAmount: "40000",
		BankName:       "GTBank",
		AcctNo:         "0123456789",
		DateOfPayment:  "2024-04-02",
	}
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
