package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"claims-payment-backend/internal/export"
	"claims-payment-backend/internal/identity"
	"claims-payment-backend/internal/models"
	"claims-payment-backend/internal/progress"
	"claims-payment-backend/internal/repository"
	"claims-payment-backend/internal/services/upload"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type PaymentStore interface {
	FindByHCPAndBatch(ctx context.Context, hcpcode, batchnumber string) ([]models.PaymentRecord, error)
	Create(ctx context.Context, p *models.PaymentRecord) (bool, error)
	List(ctx context.Context, search string) ([]models.PaymentRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Stats(ctx context.Context) (repository.PaymentStats, error)
}

type ProviderLookup interface {
	FindByCodeAndName(ctx context.Context, hcpcode, name string) ([]models.ProviderRecord, error)
}

type BatchLookup interface {
	FindByBatchNumber(ctx context.Context, batchnumber string) ([]models.BatchRecord, error)
}

type UploadJobStore interface {
	Create(ctx context.Context, job *models.UploadJob) error
	Get(ctx context.Context, id uuid.UUID) (*models.UploadJob, error)
	Complete(ctx context.Context, job *models.UploadJob) error
}

type AuditRecorder interface {
	Record(ctx context.Context, entry *models.PaymentAuditLog) error
}

type ReceiptRenderer interface {
	PDF(ctx context.Context, p *models.PaymentRecord) ([]byte, error)
}

type Deps struct {
	Payments  PaymentStore
	Providers ProviderLookup
	Batches   BatchLookup
	Jobs      UploadJobStore
	Audit     AuditRecorder
	Progress  progress.Tracker
	Receipts  ReceiptRenderer
	Log       *zap.Logger
}

type AccountService struct {
	payments PaymentStore
	jobs     UploadJobStore
	audit    AuditRecorder
	progress progress.Tracker
	receipts ReceiptRenderer
	log      *zap.Logger

	parser       *upload.Parser
	orchestrator *upload.Orchestrator

	// uploadMu keeps whole uploads from interleaving their duplicate checks.
	uploadMu   sync.Mutex
	running    sync.WaitGroup
	statsCache sync.Map // statsKey -> repository.PaymentStats
}

const statsKey = "payments"

func NewAccountService(d Deps) *AccountService {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	store := &uploadStore{
		payments:  d.Payments,
		providers: d.Providers,
		batches:   d.Batches,
		audit:     d.Audit,
		log:       log,
	}
	return &AccountService{
		payments:     d.Payments,
		jobs:         d.Jobs,
		audit:        d.Audit,
		progress:     d.Progress,
		receipts:     d.Receipts,
		log:          log,
		parser:       upload.NewParser(),
		orchestrator: upload.NewOrchestrator(upload.NewValidator(store), log),
	}
}

// ParseUpload decodes a file and checks its header. Errors here are fatal to
// the upload; nothing has been written.
func (s *AccountService) ParseUpload(ctx context.Context, filename string, r io.Reader) ([]upload.UploadRow, error) {
	format, err := upload.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(ctx, r, format)
}

// CreateUploadJob records a new job for already parsed rows.
func (s *AccountService) CreateUploadJob(ctx context.Context, who identity.Identity, filename string, total int) (*models.UploadJob, error) {
	now := time.Now()
	job := &models.UploadJob{
		ID:         uuid.New(),
		Filename:   filename,
		TotalRows:  total,
		Status:     models.UploadStatusProcessing,
		Errors:     []byte("[]"),
		UploadedBy: who.Email,
		StartedAt:  now,
		CreatedAt:  now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create upload job: %w", err)
	}
	if err := s.progress.Set(ctx, job.ID, 0); err != nil {
		s.log.Warn("Failed to reset upload progress", zap.String("upload_id", job.ID.String()), zap.Error(err))
	}
	return job, nil
}

// StartUpload runs an upload in the background and returns immediately.
func (s *AccountService) StartUpload(job *models.UploadJob, who identity.Identity, rows []upload.UploadRow) {
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.RunUpload(context.Background(), job, who, rows)
	}()
}

// Import parses and runs an upload synchronously.
func (s *AccountService) Import(ctx context.Context, who identity.Identity, filename string, r io.Reader) (*models.UploadJob, upload.Outcome, error) {
	rows, err := s.ParseUpload(ctx, filename, r)
	if err != nil {
		return nil, upload.Outcome{}, err
	}
	job, err := s.CreateUploadJob(ctx, who, filename, len(rows))
	if err != nil {
		return nil, upload.Outcome{}, err
	}
	out := s.RunUpload(ctx, job, who, rows)
	return job, out, nil
}

func (s *AccountService) RunUpload(ctx context.Context, job *models.UploadJob, who identity.Identity, rows []upload.UploadRow) upload.Outcome {
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	log := s.log.With(zap.String("upload_id", job.ID.String()), zap.String("filename", job.Filename))
	log.Info("Upload started", zap.Int("rows", len(rows)), zap.String("uploaded_by", who.Email))

	uploadID := job.ID
	out := s.orchestrator.Run(ctx, rows, upload.RunOptions{
		Attribution: upload.Attribution{UploadID: &uploadID, UploadedBy: who.Email},
		OnProgress: func(percent int) {
			if err := s.progress.Set(context.WithoutCancel(ctx), uploadID, percent); err != nil {
				log.Warn("Failed to update upload progress", zap.Error(err))
			}
		},
		Refresh: s.RefreshStats,
	})

	job.ProcessedCount = out.Processed
	job.InsertedCount = out.Inserted
	job.RejectedCount = len(out.Rejections)
	job.Message = out.Message
	job.Status = jobStatus(out.Status)
	errorsJSON, err := json.Marshal(out.Rejections)
	if err != nil {
		log.Error("Failed to encode upload errors", zap.Error(err))
		errorsJSON = []byte("[]")
	}
	job.Errors = errorsJSON

	if err := s.jobs.Complete(context.WithoutCancel(ctx), job); err != nil {
		log.Error("Failed to store upload summary", zap.Error(err))
	}
	log.Info("Upload finished",
		zap.String("status", job.Status),
		zap.Int("inserted", job.InsertedCount),
		zap.Int("rejected", job.RejectedCount),
	)
	return out
}

func jobStatus(st upload.Status) string {
	switch st {
	case upload.StatusAllSucceeded:
		return models.UploadStatusCompleted
	case upload.StatusCompletedWithErrors:
		return models.UploadStatusCompletedWithErrors
	case upload.StatusCancelled:
		return models.UploadStatusCancelled
	}
	return models.UploadStatusFailed
}

// Wait blocks until background uploads have finished.
func (s *AccountService) Wait() {
	s.running.Wait()
}

type UploadStatus struct {
	Job      *models.UploadJob `json:"job"`
	Progress int               `json:"progress"`
}

func (s *AccountService) GetUploadStatus(ctx context.Context, id uuid.UUID) (*UploadStatus, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	pct, _, err := s.progress.Get(ctx, id)
	if err != nil {
		s.log.Warn("Failed to read upload progress", zap.String("upload_id", id.String()), zap.Error(err))
	}
	return &UploadStatus{Job: job, Progress: pct}, nil
}

func (s *AccountService) ListPayments(ctx context.Context, search string) ([]models.PaymentRecord, error) {
	return s.payments.List(ctx, search)
}

func (s *AccountService) GetPayment(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *AccountService) DeletePayment(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	p, err := s.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.payments.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	entry := &models.PaymentAuditLog{
		PaymentID:   p.ID,
		Action:      models.AuditActionDelete,
		HCPCode:     p.HCPCode,
		BatchNumber: p.BatchNumber,
		PerformedBy: who.Email,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn("Failed to record payment audit log", zap.String("payment_id", id.String()), zap.Error(err))
	}
	if err := s.RefreshStats(ctx); err != nil {
		s.log.Warn("Failed to refresh payment stats", zap.String("payment_id", id.String()), zap.Error(err))
	}
	return nil
}

// Receipt renders the PDF receipt of one payment.
func (s *AccountService) Receipt(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, []byte, error) {
	p, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.receipts.PDF(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	return p, pdf, nil
}

func (s *AccountService) ExportPayments(ctx context.Context, w io.Writer) error {
	payments, err := s.payments.List(ctx, "")
	if err != nil {
		return err
	}
	return export.Payments(w, payments)
}

// Stats serves the cached totals, loading them on first use.
func (s *AccountService) Stats(ctx context.Context) (repository.PaymentStats, error) {
	if v, ok := s.statsCache.Load(statsKey); ok {
		return v.(repository.PaymentStats), nil
	}
	if err := s.RefreshStats(ctx); err != nil {
		return repository.PaymentStats{}, err
	}
	v, _ := s.statsCache.Load(statsKey)
	return v.(repository.PaymentStats), nil
}

// RefreshStats reloads the payment totals after the table changed.
func (s *AccountService) RefreshStats(ctx context.Context) error {
	stats, err := s.payments.Stats(ctx)
	if err != nil {
		return err
	}
	s.statsCache.Store(statsKey, stats)
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
