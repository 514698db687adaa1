package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request DTOs

type UpdateHospitalChargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type UpdateSpecializationsRequest struct {
	Specializations []string `json:"specializations" validate:"required,min=1,dive,required,max=100"`
}

// Response DTOs

type SystemSettingResponse struct {
	SettingKey   string    `json:"setting_key"`
	SettingValue string    `json:"setting_value"`
	Description  string    `json:"description,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SystemSettingListResponse struct {
	Settings []SystemSettingResponse `json:"settings"`
	Total    int                     `json:"total"`
}

type HospitalChargeResponse struct {
	Amount decimal.Decimal `json:"amount"`
}

type SpecializationsResponse struct {
	Specializations []string `json:"specializations"`
}
