package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Response DTOs

type DoctorResponse struct {
	ID             uuid.UUID       `json:"id"`
	FullName       string          `json:"full_name"`
	Specialization string          `json:"specialization"`
	ChannellingFee decimal.Decimal `json:"channelling_fee"`
}

type ScheduleResponse struct {
	ID        int             `json:"id"`
	DoctorID  uuid.UUID       `json:"doctor_id"`
	Doctor    *DoctorResponse `json:"doctor,omitempty"`
	Day       string          `json:"day"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
}
