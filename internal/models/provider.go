package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultBand = "Band A"

// ProviderRecord is a registered hospital or clinic.
type ProviderRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HCPCode       string    `gorm:"column:hcpcode;index" json:"hcpcode"`
	Name          string    `gorm:"column:name;index" json:"name"`
	AcctNo        string    `gorm:"column:acctno" json:"acctno"`
	AcctName      string    `gorm:"column:acctname" json:"acctname"`
	Phone         string    `gorm:"column:phone" json:"phone"`
	Location      string    `gorm:"column:location" json:"location"`
	ContactPerson string    `gorm:"column:contactperson" json:"contactperson"`
	InsuranceType string    `gorm:"column:insurancetype" json:"insurancetype"`
	Address       string    `gorm:"column:address" json:"address"`
	RegisterBank  string    `gorm:"column:registerbank" json:"registerbank"`
	Band          string    `gorm:"column:band" json:"band"`
	Status        string    `gorm:"column:status" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ProviderRecord) TableName() string {
	return "myhospitals"
}
