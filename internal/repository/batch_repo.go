package repository

import (
	"context"

	"claims-payment-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// FindByBatchNumber returns at most two rows.
func (r *BatchRepository) FindByBatchNumber(ctx context.Context, batchnumber string) ([]models.BatchRecord, error) {
	var batches []models.BatchRecord
	err := r.db.WithContext(ctx).
		Where("batchnumber = ?", batchnumber).
		Limit(2).
		Find(&batches).Error
	return batches, err
}

func (r *BatchRepository) Create(ctx context.Context, b *models.BatchRecord) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BatchRepository) List(ctx context.Context) ([]models.BatchRecord, error) {
	var batches []models.BatchRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&batches).Error
	return batches, err
}

func (r *BatchRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.BatchRecord{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
