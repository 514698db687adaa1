package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/delivery/http/handler"
	"clinic-billing-core/internal/usecase"
	"clinic-billing-core/pkg/apperror"
	"clinic-billing-core/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMarkPaidHandler(t *testing.T) {
	billID := uuid.New()

	tests := []struct {
		name       string
		body       string
		wantReq    *dto.MarkPaidRequest
		err        error
		wantStatus int
	}{
		{"card", `{"payment_method":"CARD"}`, &dto.MarkPaidRequest{PaymentMethod: "CARD"}, nil, http.StatusOK},
		{"empty body", "", &dto.MarkPaidRequest{}, nil, http.StatusOK},
		{"already paid", `{"payment_method":"CASH"}`, &dto.MarkPaidRequest{PaymentMethod: "CASH"},
			apperror.Conflict(usecase.ErrBillAlreadyPaid, "", nil), http.StatusConflict},
		{"unknown bill", "", &dto.MarkPaidRequest{},
			apperror.NotFound(usecase.ErrBillNotFound, "bill", billID), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockPaymentUsecase)
			var result *dto.BillResponse
			if tt.err == nil {
				result = &dto.BillResponse{ID: billID, Paid: true, TotalAmount: decimal.NewFromInt(1250)}
			}
			uc.On("MarkPaid", mock.Anything, billID, tt.wantReq).Return(result, tt.err)
			h := handler.NewPaymentHandler(uc, validator.NewValidator())

			req := withVars(httptest.NewRequest(http.MethodPost, "/api/v1/bills/"+billID.String()+"/pay",
				strings.NewReader(tt.body)), map[string]string{"id": billID.String()})
			rec := httptest.NewRecorder()
			h.MarkPaid(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			uc.AssertExpectations(t)
		})
	}
}

func TestGetAllPaymentsHandler_ByPatient(t *testing.T) {
	uc := new(mockPaymentUsecase)
	patientID := uuid.New()
	uc.On("GetPaymentsByPatient", mock.Anything, patientID).
		Return(&dto.PaymentListResponse{Payments: []dto.PaymentResponse{{ID: uuid.New()}}, Total: 1}, nil)
	h := handler.NewPaymentHandler(uc, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments?patient_id="+patientID.String(), nil)
	rec := httptest.NewRecorder()
	h.GetAllPayments(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
	uc.AssertNotCalled(t, "GetAllPayments", mock.Anything)
}

func TestDeletePaymentHandler_NotFound(t *testing.T) {
	uc := new(mockPaymentUsecase)
	id := uuid.New()
	uc.On("DeletePayment", mock.Anything, id).Return(apperror.NotFound(usecase.ErrPaymentNotFound, "payment", id))
	h := handler.NewPaymentHandler(uc, validator.NewValidator())

	req := withVars(httptest.NewRequest(http.MethodDelete, "/api/v1/payments/"+id.String(), nil), map[string]string{"id": id.String()})
	rec := httptest.NewRecorder()
	h.DeletePayment(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(apperror.KindNotFound), errorKind(t, decodeBody(t, rec)))
}
