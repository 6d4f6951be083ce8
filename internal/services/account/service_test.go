package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"claims-payment-backend/internal/identity"
	"claims-payment-backend/internal/models"
	"claims-payment-backend/internal/progress"
	"claims-payment-backend/internal/repository"
	"claims-payment-backend/internal/services/upload"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type fakePayments struct {
	mu       sync.Mutex
	rows     []models.PaymentRecord
	statsErr error
}

func (f *fakePayments) FindByHCPAndBatch(_ context.Context, hcpcode, batchnumber string) ([]models.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PaymentRecord
	for _, p := range f.rows {
		if p.HCPCode == hcpcode && p.BatchNumber == batchnumber {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) Create(_ context.Context, p *models.PaymentRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.HCPCode == p.HCPCode && existing.BatchNumber == p.BatchNumber {
			return false, nil
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.rows = append(f.rows, *p)
	return true, nil
}

func (f *fakePayments) List(_ context.Context, search string) ([]models.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PaymentRecord
	for _, p := range f.rows {
		if search == "" || strings.Contains(strings.ToLower(p.HospName), strings.ToLower(search)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) GetByID(_ context.Context, id uuid.UUID) (*models.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			p := f.rows[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayments) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakePayments) Stats(_ context.Context) (repository.PaymentStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return repository.PaymentStats{}, f.statsErr
	}
	stats := repository.PaymentStats{}
	for _, p := range f.rows {
		stats.Count++
		stats.BillTotal = stats.BillTotal.Add(p.BillAmount)
		stats.ApprovedTotal = stats.ApprovedTotal.Add(p.ApprovedAmount)
	}
	return stats, nil
}

type fakeProviders []models.ProviderRecord

func (f fakeProviders) FindByCodeAndName(_ context.Context, hcpcode, name string) ([]models.ProviderRecord, error) {
	var out []models.ProviderRecord
	for _, p := range f {
		if p.HCPCode == hcpcode && p.Name == name {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeBatches []models.BatchRecord

func (f fakeBatches) FindByBatchNumber(_ context.Context, batchnumber string) ([]models.BatchRecord, error) {
	var out []models.BatchRecord
	for _, b := range f {
		if b.BatchNumber == batchnumber {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]models.UploadJob
}

func (f *fakeJobs) Create(_ context.Context, job *models.UploadJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = *job
	return nil
}

func (f *fakeJobs) Get(_ context.Context, id uuid.UUID) (*models.UploadJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (f *fakeJobs) Complete(ctx context.Context, job *models.UploadJob) error {
	return f.Create(ctx, job)
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.PaymentAuditLog
}

func (f *fakeAudit) Record(_ context.Context, entry *models.PaymentAuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

type fakeReceipts struct{}

func (fakeReceipts) PDF(_ context.Context, p *models.PaymentRecord) ([]byte, error) {
	return []byte("%PDF receipt " + p.HCPCode), nil
}

type fixture struct {
	svc      *AccountService
	payments *fakePayments
	jobs     *fakeJobs
	audit    *fakeAudit
	tracker  *progress.MemoryTracker
}

func newFixture() *fixture {
	f := &fixture{
		payments: &fakePayments{},
		jobs:     &fakeJobs{jobs: map[uuid.UUID]models.UploadJob{}},
		audit:    &fakeAudit{},
		tracker:  progress.NewMemoryTracker(),
	}
	f.svc = NewAccountService(Deps{
		Payments: f.payments,
		Providers: fakeProviders{
			{HCPCode: "AB/123456/PHIS", Name: "ABC CLINIC"},
		},
		Batches: fakeBatches{
			{BatchNumber: "PHIS/654321/2024", BillAmount: "50000"},
			{BatchNumber: "PHIS/111111/2024", BillAmount: "20,000"},
		},
		Jobs:     f.jobs,
		Audit:    f.audit,
		Progress: f.tracker,
		Receipts: fakeReceipts{},
	})
	return f
}

const header = "hcpcode,batchnumber,hospname,narration,noofencounter,billamount,approvedamount,bankname,acctno,dateofpayment\n"

var uploader = identity.Identity{Authenticated: true, Role: "account", Email: "ops@example.com"}

func TestImportInsertsAndAudits(t *testing.T) {
	f := newFixture()
	csv := header +
		"AB/123456/PHIS,PHIS/654321/2024,ABC CLINIC,March,12,\"50,000\",40000,GTBank,0123456789,2024-04-02\n" +
		"AB/123456/PHIS,PHIS/111111/2024,ABC CLINIC,April,3,20000,25000,GTBank,0123456789,2024-05-02\n"

	job, out, err := f.svc.Import(context.Background(), uploader, "payments.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if out.Inserted != 1 || len(out.Rejections) != 1 {
		t.Fatalf("inserted=%d rejections=%v", out.Inserted, out.Rejections)
	}
	want := "Row 2: Approved amount (25000) cannot exceed bill amount (20000)"
	if out.Rejections[0] != want {
		t.Fatalf("rejection = %q, want %q", out.Rejections[0], want)
	}

	stored, err := f.jobs.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("job not stored: %v", err)
	}
	if stored.Status != models.UploadStatusCompletedWithErrors {
		t.Errorf("job status = %q", stored.Status)
	}
	if stored.InsertedCount != 1 || stored.RejectedCount != 1 || stored.ProcessedCount != 2 {
		t.Errorf("job counts = %+v", stored)
	}
	var reasons []string
	if err := json.Unmarshal(stored.Errors, &reasons); err != nil || len(reasons) != 1 {
		t.Errorf("job errors = %s (%v)", stored.Errors, err)
	}

	if len(f.payments.rows) != 1 {
		t.Fatalf("payments = %d", len(f.payments.rows))
	}
	p := f.payments.rows[0]
	if p.UploadedBy != uploader.Email || p.UploadID == nil || *p.UploadID != job.ID {
		t.Errorf("attribution not stored: %+v", p)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != models.AuditActionInsert {
		t.Errorf("audit entries = %+v", f.audit.entries)
	}

	pct, ok, _ := f.tracker.Get(context.Background(), job.ID)
	if !ok || pct != 0 {
		t.Errorf("progress after run = %d (%v), want 0", pct, ok)
	}

	stats, err := f.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Count != 1 || !stats.BillTotal.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("stats = %+v", stats)
	}
}

func TestImportRejectsMissingColumns(t *testing.T) {
	f := newFixture()
	csv := "hcpcode,batchnumber,hospname\nAB/123456/PHIS,PHIS/654321/2024,ABC CLINIC\n"

	_, _, err := f.svc.Import(context.Background(), uploader, "payments.csv", strings.NewReader(csv))
	var missing *upload.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingColumnsError", err)
	}
	if len(f.jobs.jobs) != 0 || len(f.payments.rows) != 0 {
		t.Errorf("structural failure must not write anything")
	}
}

func TestImportRejectsUnsupportedFormat(t *testing.T) {
	f := newFixture()
	_, _, err := f.svc.Import(context.Background(), uploader, "payments.pdf", strings.NewReader(header))
	if !errors.Is(err, upload.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestStartUploadRunsInBackground(t *testing.T) {
	f := newFixture()
	csv := header +
		"AB/123456/PHIS,PHIS/654321/2024,ABC CLINIC,March,12,50000,40000,GTBank,0123456789,2024-04-02\n"
	rows, err := f.svc.ParseUpload(context.Background(), "payments.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseUpload: %v", err)
	}
	job, err := f.svc.CreateUploadJob(context.Background(), uploader, "payments.csv", len(rows))
	if err != nil {
		t.Fatalf("CreateUploadJob: %v", err)
	}

	f.svc.StartUpload(job, uploader, rows)
	f.svc.Wait()

	status, err := f.svc.GetUploadStatus(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetUploadStatus: %v", err)
	}
	if status.Job.Status != models.UploadStatusCompleted || status.Job.Message != upload.SuccessMessage {
		t.Errorf("job = %+v", status.Job)
	}
	if status.Progress != 0 {
		t.Errorf("progress = %d", status.Progress)
	}
}

func TestGetUploadStatusNotFound(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.GetUploadStatus(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRunUploadCancelled(t *testing.T) {
	f := newFixture()
	csv := header +
		"AB/123456/PHIS,PHIS/654321/2024,ABC CLINIC,March,12,50000,40000,GTBank,0123456789,2024-04-02\n"
	rows, err := f.svc.ParseUpload(context.Background(), "payments.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseUpload: %v", err)
	}
	job, err := f.svc.CreateUploadJob(context.Background(), uploader, "payments.csv", len(rows))
	if err != nil {
		t.Fatalf("CreateUploadJob: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := f.svc.RunUpload(ctx, job, uploader, rows)
	if out.Status != upload.StatusCancelled || out.Inserted != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	stored, _ := f.jobs.Get(context.Background(), job.ID)
	if stored.Status != models.UploadStatusCancelled {
		t.Errorf("job status = %q", stored.Status)
	}
}

func seedPayment(t *testing.T, f *fixture) models.PaymentRecord {
	t.Helper()
	p := &models.PaymentRecord{
		HCPCode:        "AB/123456/PHIS",
		BatchNumber:    "PHIS/654321/2024",
		HospName:       "ABC CLINIC",
		BillAmount:     decimal.NewFromInt(50000),
		ApprovedAmount: decimal.NewFromInt(40000),
	}
	if _, err := f.payments.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return *p
}

func TestDeletePayment(t *testing.T) {
	f := newFixture()
	p := seedPayment(t, f)

	if err := f.svc.DeletePayment(context.Background(), uploader, p.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	if len(f.payments.rows) != 0 {
		t.Fatalf("payment not deleted")
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != models.AuditActionDelete ||
		f.audit.entries[0].PerformedBy != uploader.Email {
		t.Errorf("audit entries = %+v", f.audit.entries)
	}
	if err := f.svc.DeletePayment(context.Background(), uploader, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}

	stats, _ := f.svc.Stats(context.Background())
	if stats.Count != 0 {
		t.Errorf("stats not refreshed after delete: %+v", stats)
	}
}

func TestDeletePaymentSurvivesStatsFailure(t *testing.T) {
	f := newFixture()
	p := seedPayment(t, f)
	f.payments.statsErr = errors.New("connection reset")

	if err := f.svc.DeletePayment(context.Background(), uploader, p.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	if len(f.payments.rows) != 0 || len(f.audit.entries) != 1 {
		t.Fatalf("rows = %d audit = %d", len(f.payments.rows), len(f.audit.entries))
	}
}

func TestReceipt(t *testing.T) {
	f := newFixture()
	p := seedPayment(t, f)

	got, pdf, err := f.svc.Receipt(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Receipt: %v", err)
	}
	if got.ID != p.ID || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("receipt = %v %q", got.ID, pdf)
	}
	if _, _, err := f.svc.Receipt(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown receipt err = %v", err)
	}
}

func TestExportPayments(t *testing.T) {
	f := newFixture()
	seedPayment(t, f)

	var buf bytes.Buffer
	if err := f.svc.ExportPayments(context.Background(), &buf); err != nil {
		t.Fatalf("ExportPayments: %v", err)
	}
	wb, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "AB/123456/PHIS" {
		t.Errorf("rows = %v", rows)
	}
}

func TestStoreAmbiguousLookup(t *testing.T) {
	s := &uploadStore{
		providers: fakeProviders{
			{HCPCode: "AB/1/PHIS", Name: "X"},
			{HCPCode: "AB/1/PHIS", Name: "X"},
		},
	}
	_, err := s.FindProvider(context.Background(), "AB/1/PHIS", "X")
	if !errors.Is(err, upload.ErrMultipleMatches) {
		t.Fatalf("err = %v, want ErrMultipleMatches", err)
	}
	p, err := s.FindProvider(context.Background(), "AB/2/PHIS", "X")
	if p != nil || err != nil {
		t.Fatalf("no match = %v, %v", p, err)
	}
}
