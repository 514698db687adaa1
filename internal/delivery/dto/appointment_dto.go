package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type BookAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patient_id" validate:"required"`
	ScheduleID      int       `json:"schedule_id" validate:"required,min=1"`
	AppointmentDate string    `json:"appointment_date" validate:"required,datetime=2006-01-02"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"omitempty,max=1000"`
}

type CancelAppointmentRequest struct {
	Reason         string `json:"reason" validate:"omitempty,max=500"`
	RefundRequired bool   `json:"refund_required"`
}

// AppointmentListRequest is built from query parameters; every field is optional.
type AppointmentListRequest struct {
	Status    string     `validate:"omitempty"`
	PatientID *uuid.UUID `validate:"omitempty"`
	DoctorID  *uuid.UUID `validate:"omitempty"`
	Date      string     `validate:"omitempty,datetime=2006-01-02"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                 uuid.UUID         `json:"id"`
	PatientID          uuid.UUID         `json:"patient_id"`
	PatientName        string            `json:"patient_name,omitempty"`
	ScheduleID         int               `json:"schedule_id"`
	Schedule           *ScheduleResponse `json:"schedule,omitempty"`
	AppointmentDate    string            `json:"appointment_date"`
	Status             string            `json:"status"`
	PaymentStatus      string            `json:"payment_status"`
	AppointmentFee     decimal.Decimal   `json:"appointment_fee"`
	PaidAmount         decimal.Decimal   `json:"paid_amount"`
	RefundAmount       decimal.Decimal   `json:"refund_amount"`
	Notes              string            `json:"notes,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	RescheduledFromID  *uuid.UUID        `json:"rescheduled_from_id,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	PaidAt             *time.Time        `json:"paid_at,omitempty"`
	RefundedAt         *time.Time        `json:"refunded_at,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
