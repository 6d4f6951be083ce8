package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecord is one settled claim payment. The pair (HCPCode, BatchNumber)
// is unique across the table.
type PaymentRecord struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	HCPCode        string          `gorm:"column:hcpcode;uniqueIndex:idx_myaccount_hcp_batch" json:"hcpcode"`
	BatchNumber    string          `gorm:"column:batchnumber;uniqueIndex:idx_myaccount_hcp_batch" json:"batchnumber"`
	HospName       string          `gorm:"column:hospname;index" json:"hospname"`
	Narration      string          `gorm:"column:narration" json:"narration"`
	NoOfEncounter  int             `gorm:"column:noofencounter" json:"noofencounter"`
	BillAmount     decimal.Decimal `gorm:"column:billamount;type:numeric" json:"billamount"`
	ApprovedAmount decimal.Decimal `gorm:"column:approvedamount;type:numeric" json:"approvedamount"`
	BankName       string          `gorm:"column:bankname" json:"bankname"`
	AcctNo         string          `gorm:"column:acctno" json:"acctno"`
	DateOfPayment  string          `gorm:"column:dateofpayment" json:"dateofpayment"`
	UploadID       *uuid.UUID      `gorm:"type:uuid;index" json:"upload_id,omitempty"`
	UploadedBy     string          `json:"uploaded_by,omitempty"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
}

func (PaymentRecord) TableName() string {
	return "myaccount"
}
