package handler

import (
	"encoding/json"
	"net/http"

	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/usecase"
	"clinic-billing-core/pkg/response"
	"clinic-billing-core/pkg/validator"
)

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

// MarkPaid settles a bill. An empty body pays in cash.
func (h *PaymentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	billID, err := uuidVar(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid bill ID", nil)
		return
	}

	var req dto.MarkPaidRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	bill, err := h.paymentUsecase.MarkPaid(r.Context(), billID, &req)
	if err != nil {
		response.AppError(w, err, "Failed to mark bill as paid")
		return
	}

	response.Success(w, http.StatusOK, "Bill marked as paid successfully", bill)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuidVar(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid payment ID", nil)
		return
	}

	payment, err := h.paymentUsecase.GetPayment(r.Context(), paymentID)
	if err != nil {
		response.AppError(w, err, "Failed to get payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment retrieved successfully", payment)
}

func (h *PaymentHandler) GetPaymentByBill(w http.ResponseWriter, r *http.Request) {
	billID, err := uuidVar(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid bill ID", nil)
		return
	}

	payment, err := h.paymentUsecase.GetPaymentByBill(r.Context(), billID)
	if err != nil {
		response.AppError(w, err, "Failed to get payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment retrieved successfully", payment)
}

// GetAllPayments optionally narrows to one patient via patient_id.
func (h *PaymentHandler) GetAllPayments(w http.ResponseWriter, r *http.Request) {
	patientID, err := optionalUUIDQuery(r, "patient_id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	var payments *dto.PaymentListResponse
	if patientID != nil {
		payments, err = h.paymentUsecase.GetPaymentsByPatient(r.Context(), *patientID)
	} else {
		payments, err = h.paymentUsecase.GetAllPayments(r.Context())
	}
	if err != nil {
		response.AppError(w, err, "Failed to get payments")
		return
	}

	response.Success(w, http.StatusOK, "Payments retrieved successfully", payments)
}

func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuidVar(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid payment ID", nil)
		return
	}

	if err := h.paymentUsecase.DeletePayment(r.Context(), paymentID); err != nil {
		response.AppError(w, err, "Failed to delete payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment deleted successfully", nil)
}
