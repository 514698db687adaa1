package handler

import (
	"net/http"

	"clinic-billing-core/internal/usecase"
	"clinic-billing-core/pkg/response"
)

type PatientHandler struct {
	historyUsecase usecase.PatientHistoryUsecase
}

func NewPatientHandler(historyUsecase usecase.PatientHistoryUsecase) *PatientHandler {
	return &PatientHandler{
		historyUsecase: historyUsecase,
	}
}

func (h *PatientHandler) GetPatientHistory(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuidVar(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	history, err := h.historyUsecase.GetPatientHistory(r.Context(), patientID)
	if err != nil {
		response.AppError(w, err, "Failed to get patient history")
		return
	}

	response.Success(w, http.StatusOK, "Patient history retrieved successfully", history)
}
