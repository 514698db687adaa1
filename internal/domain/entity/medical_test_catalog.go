package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MedicalTest is a billable diagnostic from the test catalogue.
// Type doubles as the bill item tag (LAB, RADIOLOGY, ...).
type MedicalTest struct {
	ID          int             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Type        string          `gorm:"type:varchar(50);not null" json:"type"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MedicalTest) TableName() string {
	return "medical_tests"
}
