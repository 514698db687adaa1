package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillType tells appointment bills from standalone test bills
type BillType string

const (
	BillTypeAppointment BillType = "APPOINTMENT"
	BillTypeTestOnly    BillType = "TEST_ONLY"
)

// Structural bill item tags. Items carrying them are created with an
// appointment bill and can never be removed.
const (
	ItemTypeDoctorFee   = "DOCTOR_FEE"
	ItemTypeHospitalFee = "HOSPITAL_FEE"
)

// DefaultPaymentMethod is used when a bill is settled without a method.
const DefaultPaymentMethod = "CASH"

// Bill is a billable document. TotalAmount always equals the sum of Items.
type Bill struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	PatientName   string          `gorm:"type:varchar(255);not null" json:"patient_name"`
	BillType      BillType        `gorm:"type:varchar(20);not null" json:"bill_type"`
	AppointmentID *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_bills_appointment_id" json:"appointment_id,omitempty"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	Paid          bool            `gorm:"not null;default:false;index" json:"paid"`
	PaymentMethod string          `gorm:"type:varchar(30)" json:"payment_method,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`

	// Relationships
	Items []BillItem `gorm:"foreignKey:BillID" json:"items,omitempty"`
}

func (Bill) TableName() string {
	return "bills"
}

// HasItemNamed reports whether an item with the same name (any case) exists.
func (b *Bill) HasItemNamed(name string) bool {
	for _, item := range b.Items {
		if strings.EqualFold(item.ItemName, name) {
			return true
		}
	}
	return false
}

// ItemsTotal sums the current line items.
func (b *Bill) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Price)
	}
	return total
}

// BillItem is one charge within a bill
type BillItem struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BillID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	ItemName string          `gorm:"type:varchar(255);not null" json:"item_name"`
	ItemType string          `gorm:"type:varchar(50);not null" json:"item_type"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (BillItem) TableName() string {
	return "bill_items"
}

// IsStructural reports whether the item is a fee split that cannot be removed.
func (i *BillItem) IsStructural() bool {
	return i.ItemType == ItemTypeDoctorFee || i.ItemType == ItemTypeHospitalFee
}
