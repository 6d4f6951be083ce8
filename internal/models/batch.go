package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchRecord is a registered claims batch. BillAmount is kept as entered,
// thousands separators included.
type BatchRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BatchNumber      string    `gorm:"column:batchnumber;uniqueIndex" json:"batchnumber"`
	HCPCode          string    `gorm:"column:hcpcode;index" json:"hcpcode"`
	HospName         string    `gorm:"column:hospname" json:"hospname"`
	UtilizationMonth string    `gorm:"column:utilizationmonth" json:"utilizationmonth"`
	Year             string    `gorm:"column:year" json:"year"`
	BillAmount       string    `gorm:"column:billamount" json:"billamount"`
	ClaimsType       string    `gorm:"column:claimstype" json:"claimstype"`
	CreatedAt        time.Time `json:"created_at"`
}

func (BatchRecord) TableName() string {
	return "mybatch"
}
