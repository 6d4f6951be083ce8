package repository

import (
	"context"
	"strings"

	"claims-payment-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FindByHCPAndBatch returns at most two rows so callers can tell a unique
// match from an ambiguous one.
func (r *PaymentRepository) FindByHCPAndBatch(ctx context.Context, hcpcode, batchnumber string) ([]models.PaymentRecord, error) {
	var payments []models.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("hcpcode = ? AND batchnumber = ?", hcpcode, batchnumber).
		Limit(2).
		Find(&payments).Error
	return payments, err
}

// Create inserts one payment. It reports false when the database stored
// nothing, which happens when a concurrent writer already holds the
// (hcpcode, batchnumber) pair.
func (r *PaymentRepository) Create(ctx context.Context, p *models.PaymentRecord) (bool, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hcpcode"}, {Name: "batchnumber"}},
			DoNothing: true,
		}).
		Create(p)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List returns payments in insertion order, optionally filtered by a
// case-insensitive match on hcpcode, batchnumber or hospname.
func (r *PaymentRepository) List(ctx context.Context, search string) ([]models.PaymentRecord, error) {
	var payments []models.PaymentRecord
	query := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).Order("created_at ASC")

	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(hcpcode) LIKE ? OR LOWER(batchnumber) LIKE ? OR LOWER(hospname) LIKE ?",
			like, like, like,
		)
	}

	err := query.Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, error) {
	var payment models.PaymentRecord
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.PaymentRecord{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

type PaymentStats struct {
	Count         int64           `json:"count"`
	BillTotal     decimal.Decimal `json:"bill_total"`
	ApprovedTotal decimal.Decimal `json:"approved_total"`
}

func (r *PaymentRepository) Stats(ctx context.Context) (PaymentStats, error) {
	var stats PaymentStats
	err := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Select("COUNT(*) AS count, COALESCE(SUM(billamount),0) AS bill_total, COALESCE(SUM(approvedamount),0) AS approved_total").
		Scan(&stats).Error
	return stats, err
}
