package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionInsert = "insert"
	AuditActionDelete = "delete"
)

type PaymentAuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentID   uuid.UUID `gorm:"index"`
	Action      string
	HCPCode     string
	BatchNumber string
	PerformedBy string
	Reason      string
	CreatedAt   time.Time
}
