package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	UploadStatusProcessing          = "processing"
	UploadStatusCompleted           = "completed"
	UploadStatusCompletedWithErrors = "completed_with_errors"
	UploadStatusFailed              = "failed"
	UploadStatusCancelled           = "cancelled"
)

// UploadJob tracks one payment file import from start to final summary.
type UploadJob struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Filename       string         `json:"filename"`
	TotalRows      int            `json:"total_rows"`
	ProcessedCount int            `json:"processed_count"`
	InsertedCount  int            `json:"inserted_count"`
	RejectedCount  int            `json:"rejected_count"`
	Status         string         `gorm:"index" json:"status"`
	Message        string         `json:"message"`
	Errors         datatypes.JSON `json:"errors"`
	UploadedBy     string         `json:"uploaded_by"`
	StartedAt      time.Time      `json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (UploadJob) TableName() string {
	return "payment_uploads"
}
