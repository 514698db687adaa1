package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is the immutable record of a full settlement of one bill.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BillID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"bill_id"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	PaymentMethod string          `gorm:"type:varchar(30);not null" json:"payment_method"`
	PaidAt        time.Time       `gorm:"not null" json:"paid_at"`

	// Relationships
	Bill *Bill `gorm:"foreignKey:BillID" json:"bill,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
