package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" validate:"omitempty,max=30"`
}

// Response DTOs

type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	BillID        uuid.UUID       `json:"bill_id"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentMethod string          `json:"payment_method"`
	PaidAt        time.Time       `json:"paid_at"`
}

type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    int               `json:"total"`
}
