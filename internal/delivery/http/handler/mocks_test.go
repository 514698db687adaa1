package handler_test

import (
	"context"

	"clinic-billing-core/internal/delivery/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAppointmentUsecase struct {
	mock.Mock
}

func (m *mockAppointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) RescheduleAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) GetAllAppointments(ctx context.Context, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.AppointmentListResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) GetRescheduledTo(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

type mockBillUsecase struct {
	mock.Mock
}

func (m *mockBillUsecase) CreateAppointmentBill(ctx context.Context, req *dto.CreateAppointmentBillRequest) (*dto.BillResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.BillResponse)
	return resp, args.Error(1)
}

func (m *mockBillUsecase) CreateTestOnlyBill(ctx context.Context, req *dto.CreateTestOnlyBillRequest) (*dto.BillResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.BillResponse)
	return resp, args.Error(1)
}

func (m *mockBillUsecase) AddTest(ctx context.Context, billID uuid.UUID, req *dto.AddTestRequest) (*dto.BillResponse, error) {
	args := m.Called(ctx, billID, req)
	resp, _ := args.Get(0).(*dto.BillResponse)
	return resp, args.Error(1)
}

func (m *mockBillUsecase) RemoveItem(ctx context.Context, billID, itemID uuid.UUID) (*dto.BillResponse, error) {
	args := m.Called(ctx, billID, itemID)
	resp, _ := args.Get(0).(*dto.BillResponse)
	return resp, args.Error(1)
}

func (m *mockBillUsecase) DeleteBill(ctx context.Context, billID uuid.UUID) error {
	return m.Called(ctx, billID).Error(0)
}

func (m *mockBillUsecase) GetBill(ctx context.Context, billID uuid.UUID) (*dto.BillResponse, error) {
	args := m.Called(ctx, billID)
	resp, _ := args.Get(0).(*dto.BillResponse)
	return resp, args.Error(1)
}

func (m *mockBillUsecase) GetAllBills(ctx context.Context, req *dto.BillListRequest) (*dto.BillListResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.BillListResponse)
	return resp, args.Error(1)
}

func (m *mockBillUsecase) GetTotalRevenue(ctx context.Context) (*dto.RevenueResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*dto.RevenueResponse)
	return resp, args.Error(1)
}

type mockPaymentUsecase struct {
	mock.Mock
}

func (m *mockPaymentUsecase) MarkPaid(ctx context.Context, billID uuid.UUID, req *dto.MarkPaidRequest) (*dto.BillResponse, error) {
	args := m.Called(ctx, billID, req)
	resp, _ := args.Get(0).(*dto.BillResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentUsecase) GetPayment(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.PaymentResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentUsecase) GetPaymentByBill(ctx context.Context, billID uuid.UUID) (*dto.PaymentResponse, error) {
	args := m.Called(ctx, billID)
	resp, _ := args.Get(0).(*dto.PaymentResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentUsecase) GetAllPayments(ctx context.Context) (*dto.PaymentListResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*dto.PaymentListResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentUsecase) GetPaymentsByPatient(ctx context.Context, patientID uuid.UUID) (*dto.PaymentListResponse, error) {
	args := m.Called(ctx, patientID)
	resp, _ := args.Get(0).(*dto.PaymentListResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentUsecase) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
