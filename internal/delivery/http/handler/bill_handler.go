package handler

import (
	"encoding/json"
	"net/http"

	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/usecase"
	"clinic-billing-core/pkg/response"
	"clinic-billing-core/pkg/validator"
)

type BillHandler struct {
	billUsecase usecase.BillUsecase
	validator   *validator.CustomValidator
}

func NewBillHandler(billUsecase usecase.BillUsecase, validator *validator.CustomValidator) *BillHandler {
	return &BillHandler{
		billUsecase: billUsecase,
		validator:   validator,
	}
}

func (h *BillHandler) CreateAppointmentBill(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	bill, err := h.billUsecase.CreateAppointmentBill(r.Context(), &req)
	if err != nil {
		response.AppError(w, err, "Failed to create bill")
		return
	}

	response.Success(w, http.StatusCreated, "Bill created successfully", bill)
}

func (h *BillHandler) CreateTestOnlyBill(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTestOnlyBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	bill, err := h.billUsecase.CreateTestOnlyBill(r.Context(), &req)
	if err != nil {
		response.AppError(w, err, "Failed to create bill")
		return
	}

	response.Success(w, http.StatusCreated, "Bill created successfully", bill)
}

func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	billID, err := uuidVar(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid bill ID", nil)
		return
	}

	bill, err := h.billUsecase.GetBill(r.Context(), billID)
	if err != nil {
		response.AppError(w, err, "Failed to get bill")
		return
	}

	response.Success(w, http.StatusOK, "Bill retrieved successfully", bill)
}

// GetAllBills accepts patient_id, patient_name and paid filters.
func (h *BillHandler) GetAllBills(w http.ResponseWriter, r *http.Request) {
	req := dto.BillListRequest{
		PatientName: r.URL.Query().Get("patient_name"),
	}

	var err error
	if req.PatientID, err = optionalUUIDQuery(r, "patient_id"); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}
	if req.Paid, err = optionalBoolQuery(r, "paid"); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid paid flag", nil)
		return
	}

	bills, err := h.billUsecase.GetAllBills(r.Context(), &req)
	if err != nil {
		response.AppError(w, err, "Failed to get bills")
		return
	}

	response.Success(w, http.StatusOK, "Bills retrieved successfully", bills)
}

func (h *BillHandler) AddTest(w http.ResponseWriter, r *http.Request) {
	billID, err := uuidVar(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid bill ID", nil)
		return
	}

	var req dto.AddTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	bill, err := h.billUsecase.AddTest(r.Context(), billID, &req)
	if err != nil {
		response.AppError(w, err, "Failed to add test to bill")
		return
	}

	response.Success(w, http.StatusOK, "Test added to bill successfully", bill)
}

func (h *BillHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	billID, err := uuidVar(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid bill ID", nil)
		return
	}

	itemID, err := uuidVar(r, "itemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid bill item ID", nil)
		return
	}

	bill, err := h.billUsecase.RemoveItem(r.Context(), billID, itemID)
	if err != nil {
		response.AppError(w, err, "Failed to remove bill item")
		return
	}

	response.Success(w, http.StatusOK, "Bill item removed successfully", bill)
}

func (h *BillHandler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	billID, err := uuidVar(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid bill ID", nil)
		return
	}

	if err := h.billUsecase.DeleteBill(r.Context(), billID); err != nil {
		response.AppError(w, err, "Failed to delete bill")
		return
	}

	response.Success(w, http.StatusOK, "Bill deleted successfully", nil)
}

func (h *BillHandler) GetTotalRevenue(w http.ResponseWriter, r *http.Request) {
	revenue, err := h.billUsecase.GetTotalRevenue(r.Context())
	if err != nil {
		response.AppError(w, err, "Failed to get total revenue")
		return
	}

	response.Success(w, http.StatusOK, "Total revenue retrieved successfully", revenue)
}
