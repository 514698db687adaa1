package usecase_test

import (
	"context"
	"errors"
	"testing"

	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/usecase"
	"clinic-billing-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkPaid_AppointmentBill(t *testing.T) {
	f := newFixture(t)
	appt, bill := f.appointmentBill(t)
	_, err := f.appointments.UpdateStatus(context.Background(), appt.ID, &dto.UpdateAppointmentStatusRequest{Status: "CONFIRMED"})
	require.NoError(t, err)

	paid, err := f.payments.MarkPaid(staffContext(uuid.New()), bill.ID, &dto.MarkPaidRequest{PaymentMethod: "CARD"})

	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, "CARD", paid.PaymentMethod)
	assert.NotNil(t, paid.PaidAt)

	payments := f.store.AllPayments()
	require.Len(t, payments, 1)
	assert.Equal(t, bill.ID, payments[0].BillID)
	assert.Equal(t, "1250.00", payments[0].AmountPaid.StringFixed(2))
	assert.Equal(t, "CARD", payments[0].PaymentMethod)

	stored, _ := f.store.Appointment(appt.ID)
	assert.Equal(t, entity.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, "1250.00", stored.PaidAmount.StringFixed(2))
	assert.NotNil(t, stored.PaidAt)
	assert.Equal(t, entity.AppointmentStatusConfirmed, stored.Status)

	sent := f.notifications.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, bill.ID, sent[0].BillID)
	assert.Equal(t, payments[0].ID, sent[0].PaymentID)
	assert.Equal(t, f.patient.FullName, sent[0].PatientName)
	assert.Equal(t, "1250.00", sent[0].Amount.StringFixed(2))

	assert.Contains(t, actionsOf(f.store.AuditLogs()), entity.AuditActionBillPaid)
}

func TestMarkPaid_DefaultsToCash(t *testing.T) {
	f := newFixture(t)
	bill, err := f.bills.CreateTestOnlyBill(context.Background(), &dto.CreateTestOnlyBillRequest{PatientID: f.patient.ID, TestIDs: []int{xrayID}})
	require.NoError(t, err)

	paid, err := f.payments.MarkPaid(context.Background(), bill.ID, &dto.MarkPaidRequest{PaymentMethod: "  "})

	require.NoError(t, err)
	assert.Equal(t, entity.DefaultPaymentMethod, paid.PaymentMethod)

	payment, err := f.payments.GetPaymentByBill(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "CASH", payment.PaymentMethod)
	assert.Equal(t, "1500.00", payment.AmountPaid.StringFixed(2))
}

func TestMarkPaid_Twice(t *testing.T) {
	f := newFixture(t)
	_, bill := f.appointmentBill(t)
	ctx := context.Background()

	_, err := f.payments.MarkPaid(ctx, bill.ID, &dto.MarkPaidRequest{PaymentMethod: "CARD"})
	require.NoError(t, err)

	_, err = f.payments.MarkPaid(ctx, bill.ID, &dto.MarkPaidRequest{PaymentMethod: "CASH"})

	assert.True(t, errors.Is(err, usecase.ErrBillAlreadyPaid))
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Len(t, f.store.AllPayments(), 1)
	assert.Len(t, f.notifications.messages(), 1)

	stored, _ := f.store.Bill(bill.ID)
	assert.Equal(t, "CARD", stored.PaymentMethod)
}

func TestMarkPaid_UnknownBill(t *testing.T) {
	f := newFixture(t)

	_, err := f.payments.MarkPaid(context.Background(), uuid.New(), nil)

	assert.True(t, errors.Is(err, usecase.ErrBillNotFound))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestMarkPaid_RollsBackOnFailure(t *testing.T) {
	for _, op := range []string{"payments.Create", "appointments.Update", "auditLogs.Create"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			appt, bill := f.appointmentBill(t)
			f.store.FailOn(op, errors.New("connection reset"))

			_, err := f.payments.MarkPaid(context.Background(), bill.ID, &dto.MarkPaidRequest{PaymentMethod: "CARD"})
			require.Error(t, err)

			storedBill, _ := f.store.Bill(bill.ID)
			assert.False(t, storedBill.Paid)
			assert.Nil(t, storedBill.PaidAt)
			assert.Empty(t, f.store.AllPayments())

			storedAppt, _ := f.store.Appointment(appt.ID)
			assert.Equal(t, entity.PaymentStatusUnpaid, storedAppt.PaymentStatus)
			assert.True(t, storedAppt.PaidAmount.IsZero())

			assert.Empty(t, f.notifications.messages())

			f.store.FailOn(op, nil)
			_, err = f.payments.MarkPaid(context.Background(), bill.ID, &dto.MarkPaidRequest{PaymentMethod: "CARD"})
			assert.NoError(t, err)
		})
	}
}

func TestGetPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, first := f.appointmentBill(t)
	second, err := f.bills.CreateTestOnlyBill(ctx, &dto.CreateTestOnlyBillRequest{PatientID: f.patient.ID, TestIDs: []int{bloodTestID}})
	require.NoError(t, err)
	_, err = f.payments.MarkPaid(ctx, first.ID, nil)
	require.NoError(t, err)
	_, err = f.payments.MarkPaid(ctx, second.ID, nil)
	require.NoError(t, err)

	all, err := f.payments.GetAllPayments(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, all.Total)
	assert.Equal(t, second.ID, all.Payments[0].BillID)

	byPatient, err := f.payments.GetPaymentsByPatient(ctx, f.patient.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, byPatient.Total)

	none, err := f.payments.GetPaymentsByPatient(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, none.Total)

	byBill, err := f.payments.GetPaymentByBill(ctx, first.ID)
	require.NoError(t, err)
	got, err := f.payments.GetPayment(ctx, byBill.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.BillID)

	_, err = f.payments.GetPayment(ctx, uuid.New())
	assert.True(t, errors.Is(err, usecase.ErrPaymentNotFound))
}

func TestGetPaymentByBill_Unpaid(t *testing.T) {
	f := newFixture(t)
	_, bill := f.appointmentBill(t)

	_, err := f.payments.GetPaymentByBill(context.Background(), bill.ID)

	assert.True(t, errors.Is(err, usecase.ErrPaymentNotFound))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeletePayment_LeavesBillPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt, bill := f.appointmentBill(t)
	_, err := f.payments.MarkPaid(ctx, bill.ID, nil)
	require.NoError(t, err)
	payment, err := f.payments.GetPaymentByBill(ctx, bill.ID)
	require.NoError(t, err)

	require.NoError(t, f.payments.DeletePayment(ctx, payment.ID))

	assert.Empty(t, f.store.AllPayments())
	storedBill, _ := f.store.Bill(bill.ID)
	assert.True(t, storedBill.Paid)
	storedAppt, _ := f.store.Appointment(appt.ID)
	assert.Equal(t, entity.PaymentStatusPaid, storedAppt.PaymentStatus)
	assert.Contains(t, actionsOf(f.store.AuditLogs()), entity.AuditActionPaymentDelete)

	err = f.payments.DeletePayment(ctx, payment.ID)
	assert.True(t, errors.Is(err, usecase.ErrPaymentNotFound))
}
