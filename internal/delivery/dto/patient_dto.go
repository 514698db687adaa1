package dto

import (
	"github.com/google/uuid"
)

// Response DTOs

type PatientResponse struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Email       string    `json:"email,omitempty"`
}

// PatientHistoryResponse gathers everything the clinic holds for one patient.
type PatientHistoryResponse struct {
	Patient      PatientResponse       `json:"patient"`
	Appointments []AppointmentResponse `json:"appointments"`
	Bills        []BillResponse        `json:"bills"`
	Payments     []PaymentResponse     `json:"payments"`
}
