package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Doctor is owned by the staff directory; the core only reads it.
type Doctor struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FullName       string          `gorm:"type:varchar(255);not null" json:"full_name"`
	Specialization string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	ChannellingFee decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"channelling_fee"`

	// Relationships
	Schedules []DoctorSchedule `gorm:"foreignKey:DoctorID" json:"schedules,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}
