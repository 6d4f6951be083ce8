// Package registry maintains the hospital and batch records that payment
// uploads are checked against.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"claims-payment-backend/internal/export"
	"claims-payment-backend/internal/models"
	"claims-payment-backend/internal/services/upload"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDuplicateProvider = errors.New("hospital with this name already exists")
	ErrDuplicateBatch    = errors.New("a claim with this batch number already exists")
	ErrInvalidProvider   = errors.New("invalid hospital")
	ErrInvalidBatch      = errors.New("invalid batch")
	ErrNotFound          = errors.New("record not found")
)

type ProviderStore interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, p *models.ProviderRecord) error
	List(ctx context.Context, search string) ([]models.ProviderRecord, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type BatchStore interface {
	FindByBatchNumber(ctx context.Context, batchnumber string) ([]models.BatchRecord, error)
	Create(ctx context.Context, b *models.BatchRecord) error
	List(ctx context.Context) ([]models.BatchRecord, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type RegistryService struct {
	providers ProviderStore
	batches   BatchStore
	log       *zap.Logger
}

func NewRegistryService(providers ProviderStore, batches BatchStore, log *zap.Logger) *RegistryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistryService{providers: providers, batches: batches, log: log}
}

// RegisterProvider stores a hospital. Names are kept upper case so the
// upload's exact name match lines up with what the registry holds.
func (s *RegistryService) RegisterProvider(ctx context.Context, p *models.ProviderRecord) error {
	p.Name = strings.ToUpper(strings.TrimSpace(p.Name))
	p.AcctName = strings.ToUpper(p.AcctName)
	p.Location = strings.ToUpper(p.Location)
	p.ContactPerson = strings.ToUpper(p.ContactPerson)
	p.InsuranceType = strings.ToUpper(strings.TrimSpace(p.InsuranceType))

	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProvider)
	}
	if p.HCPCode == "" {
		if p.InsuranceType == "" {
			return fmt.Errorf("%w: insurancetype is required to generate an HCP code", ErrInvalidProvider)
		}
		p.HCPCode = GenerateHCPCode(p.Name, p.InsuranceType)
	}
	if p.Band == "" {
		p.Band = models.DefaultBand
	}
	if p.Status == "" {
		p.Status = "active"
	}

	exists, err := s.providers.ExistsByName(ctx, p.Name)
	if err != nil {
		return fmt.Errorf("check hospital name: %w", err)
	}
	if exists {
		return ErrDuplicateProvider
	}
	if err := s.providers.Create(ctx, p); err != nil {
		return fmt.Errorf("create hospital: %w", err)
	}
	s.log.Info("Hospital registered", zap.String("hcpcode", p.HCPCode), zap.String("name", p.Name))
	return nil
}

func (s *RegistryService) ListProviders(ctx context.Context, search string) ([]models.ProviderRecord, error) {
	return s.providers.List(ctx, search)
}

func (s *RegistryService) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	n, err := s.providers.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RegistryService) ExportProviders(ctx context.Context, w io.Writer) error {
	providers, err := s.providers.List(ctx, "")
	if err != nil {
		return err
	}
	return export.Providers(w, providers)
}

// RegisterBatch stores a claims batch. The bill amount must parse the way
// uploads parse it, otherwise no upload could ever match the batch.
func (s *RegistryService) RegisterBatch(ctx context.Context, b *models.BatchRecord) error {
	b.HospName = strings.ToUpper(strings.TrimSpace(b.HospName))
	b.ClaimsType = strings.TrimSpace(b.ClaimsType)
	b.Year = strings.TrimSpace(b.Year)

	if _, ok := upload.ParseAmount(b.BillAmount); !ok {
		return fmt.Errorf("%w: bill amount (%s) is not a number", ErrInvalidBatch, b.BillAmount)
	}
	if b.BatchNumber == "" {
		if b.ClaimsType == "" || b.Year == "" {
			return fmt.Errorf("%w: claimstype and year are required to generate a batch number", ErrInvalidBatch)
		}
		b.BatchNumber = GenerateBatchNumber(b.ClaimsType, b.Year)
	}

	existing, err := s.batches.FindByBatchNumber(ctx, b.BatchNumber)
	if err != nil {
		return fmt.Errorf("check batch number: %w", err)
	}
	if len(existing) > 0 {
		return ErrDuplicateBatch
	}
	if err := s.batches.Create(ctx, b); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	s.log.Info("Batch registered", zap.String("batchnumber", b.BatchNumber), zap.String("hcpcode", b.HCPCode))
	return nil
}

func (s *RegistryService) ListBatches(ctx context.Context) ([]models.BatchRecord, error) {
	return s.batches.List(ctx)
}

func (s *RegistryService) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	n, err := s.batches.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RegistryService) ExportBatches(ctx context.Context, w io.Writer) error {
	batches, err := s.batches.List(ctx)
	if err != nil {
		return err
	}
	return export.Batches(w, batches)
}

// GenerateHCPCode builds "XX/NNNNNN/TYPE" from the first two letters of the
// name and the insurance type.
func GenerateHCPCode(name, insuranceType string) string {
	prefix := []rune(strings.ToUpper(name))
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return fmt.Sprintf("%s/%d/%s", string(prefix), randomSix(), strings.ToUpper(insuranceType))
}

// GenerateBatchNumber builds "CLAIMSTYPE/NNNNNN/YEAR".
func GenerateBatchNumber(claimsType, year string) string {
	return fmt.Sprintf("%s/%d/%s", claimsType, randomSix(), year)
}

func randomSix() int {
	return 100000 + rand.IntN(900000)
}
