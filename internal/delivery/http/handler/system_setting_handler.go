package handler

import (
	"encoding/json"
	"net/http"

	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/usecase"
	"clinic-billing-core/pkg/response"
	"clinic-billing-core/pkg/validator"
)

type SystemSettingHandler struct {
	settingUsecase usecase.SystemSettingUsecase
	validator      *validator.CustomValidator
}

func NewSystemSettingHandler(settingUsecase usecase.SystemSettingUsecase, validator *validator.CustomValidator) *SystemSettingHandler {
	return &SystemSettingHandler{
		settingUsecase: settingUsecase,
		validator:      validator,
	}
}

func (h *SystemSettingHandler) GetAllSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingUsecase.GetAllSettings(r.Context())
	if err != nil {
		response.AppError(w, err, "Failed to get settings")
		return
	}

	response.Success(w, http.StatusOK, "Settings retrieved successfully", settings)
}

func (h *SystemSettingHandler) GetHospitalCharge(w http.ResponseWriter, r *http.Request) {
	charge, err := h.settingUsecase.GetHospitalCharge(r.Context())
	if err != nil {
		response.AppError(w, err, "Failed to get hospital charge")
		return
	}

	response.Success(w, http.StatusOK, "Hospital charge retrieved successfully", charge)
}

func (h *SystemSettingHandler) UpdateHospitalCharge(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateHospitalChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	setting, err := h.settingUsecase.UpdateHospitalCharge(r.Context(), &req)
	if err != nil {
		response.AppError(w, err, "Failed to update hospital charge")
		return
	}

	response.Success(w, http.StatusOK, "Hospital charge updated successfully", setting)
}

func (h *SystemSettingHandler) GetSpecializations(w http.ResponseWriter, r *http.Request) {
	specializations, err := h.settingUsecase.GetSpecializations(r.Context())
	if err != nil {
		response.AppError(w, err, "Failed to get specializations")
		return
	}

	response.Success(w, http.StatusOK, "Specializations retrieved successfully", specializations)
}

func (h *SystemSettingHandler) UpdateSpecializations(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSpecializationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	setting, err := h.settingUsecase.UpdateSpecializations(r.Context(), &req)
	if err != nil {
		response.AppError(w, err, "Failed to update specializations")
		return
	}

	response.Success(w, http.StatusOK, "Specializations updated successfully", setting)
}
