package repository

import (
	"context"
	"time"

	"claims-payment-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadJobRepository struct {
	db *gorm.DB
}

func NewUploadJobRepository(db *gorm.DB) *UploadJobRepository {
	return &UploadJobRepository{db: db}
}

func (r *UploadJobRepository) Create(ctx context.Context, job *models.UploadJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *UploadJobRepository) Get(ctx context.Context, id uuid.UUID) (*models.UploadJob, error) {
	var job models.UploadJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// Complete stores the final summary of a job.
func (r *UploadJobRepository) Complete(ctx context.Context, job *models.UploadJob) error {
	now := time.Now()
	job.CompletedAt = &now
	return r.db.WithContext(ctx).Model(&models.UploadJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"processed_count": job.ProcessedCount,
			"inserted_count":  job.InsertedCount,
			"rejected_count":  job.RejectedCount,
			"status":          job.Status,
			"message":         job.Message,
			"errors":          job.Errors,
			"completed_at":    now,
		}).Error
}
