package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentBillRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}

type CreateTestOnlyBillRequest struct {
	PatientID uuid.UUID `json:"patient_id" validate:"required"`
	TestIDs   []int     `json:"test_ids"`
}

type AddTestRequest struct {
	TestID int `json:"test_id" validate:"required,min=1"`
}

// BillListRequest is built from query parameters; every field is optional.
type BillListRequest struct {
	PatientID   *uuid.UUID
	PatientName string
	Paid        *bool
}

// Response DTOs

type BillItemResponse struct {
	ID       uuid.UUID       `json:"id"`
	ItemName string          `json:"item_name"`
	ItemType string          `json:"item_type"`
	Price    decimal.Decimal `json:"price"`
}

type BillResponse struct {
	ID            uuid.UUID          `json:"id"`
	PatientID     uuid.UUID          `json:"patient_id"`
	PatientName   string             `json:"patient_name"`
	BillType      string             `json:"bill_type"`
	AppointmentID *uuid.UUID         `json:"appointment_id,omitempty"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Paid          bool               `json:"paid"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	Items         []BillItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
}

type BillListResponse struct {
	Bills []BillResponse `json:"bills"`
	Total int            `json:"total"`
}

type RevenueResponse struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
