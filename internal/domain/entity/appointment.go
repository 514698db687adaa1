package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus is the lifecycle status of an appointment.
// The column is a plain string so rows written by older releases
// (PAID, BOOKED, SCHEDULES) still load; those values pass through untouched.
type AppointmentStatus string

const (
	AppointmentStatusPending     AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed   AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted   AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled   AppointmentStatus = "CANCELLED"
	AppointmentStatusRescheduled AppointmentStatus = "RESCHEDULED"
)

var writableAppointmentStatuses = map[AppointmentStatus]struct{}{
	AppointmentStatusPending:     {},
	AppointmentStatusConfirmed:   {},
	AppointmentStatusCompleted:   {},
	AppointmentStatusCancelled:   {},
	AppointmentStatusRescheduled: {},
}

// IsWritable reports whether new logic may store this status.
func (s AppointmentStatus) IsWritable() bool {
	_, ok := writableAppointmentStatuses[s]
	return ok
}

// IsActive reports whether the appointment counts toward daily capacity.
func (s AppointmentStatus) IsActive() bool {
	return s != AppointmentStatusCancelled && s != AppointmentStatusRescheduled
}

// PaymentStatus tracks money on an appointment independently of its lifecycle.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Appointment represents one scheduled visit
type Appointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	ScheduleID         int               `gorm:"not null;index" json:"schedule_id"`
	AppointmentDate    time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentStatus      PaymentStatus     `gorm:"type:varchar(20);not null;default:'UNPAID'" json:"payment_status"`
	AppointmentFee     decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"appointment_fee"`
	PaidAmount         decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0" json:"paid_amount"`
	RefundAmount       decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0" json:"refund_amount"`
	Notes              string            `gorm:"type:text" json:"notes,omitempty"`
	CancellationReason string            `gorm:"type:text" json:"cancellation_reason,omitempty"`
	RescheduledFromID  *uuid.UUID        `gorm:"type:uuid;uniqueIndex" json:"rescheduled_from_id,omitempty"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	PaidAt             *time.Time        `json:"paid_at,omitempty"`
	RefundedAt         *time.Time        `json:"refunded_at,omitempty"`

	// Relationships
	Patient  Patient        `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Schedule DoctorSchedule `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsCompleted checks if appointment is completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// IsRescheduled checks if appointment was replaced by a successor
func (a *Appointment) IsRescheduled() bool {
	return a.Status == AppointmentStatusRescheduled
}

// Cancel marks the appointment cancelled. When a refund is requested and the
// appointment holds a positive paid amount, the refund bookkeeping is recorded.
// Bills and payments are not touched.
func (a *Appointment) Cancel(reason string, refundRequired bool, now time.Time) {
	a.Status = AppointmentStatusCancelled
	a.CancellationReason = reason
	a.CancelledAt = &now

	if refundRequired && a.PaymentStatus == PaymentStatusPaid && a.PaidAmount.GreaterThan(decimal.Zero) {
		a.RefundAmount = a.PaidAmount
		a.PaymentStatus = PaymentStatusRefunded
		a.RefundedAt = &now
	}
}

// MarkPaid records a settlement without changing the lifecycle status.
func (a *Appointment) MarkPaid(amount decimal.Decimal, now time.Time) {
	a.PaidAmount = amount
	a.PaymentStatus = PaymentStatusPaid
	a.PaidAt = &now
}

// NormalizeDate strips the clock from t so dates compare by calendar day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
