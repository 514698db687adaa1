package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/service"
	"clinic-billing-core/internal/usecase"
	"clinic-billing-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookAppointment_FreezesFee(t *testing.T) {
	f := newFixture(t)
	actor := uuid.New()

	resp, err := f.appointments.BookAppointment(staffContext(actor), &dto.BookAppointmentRequest{
		PatientID:       f.patient.ID,
		ScheduleID:      f.schedule.ID,
		AppointmentDate: "2025-03-10",
	})

	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "UNPAID", resp.PaymentStatus)
	assert.Equal(t, "2025-03-10", resp.AppointmentDate)
	assert.Equal(t, "1250.00", resp.AppointmentFee.StringFixed(2))
	assert.Equal(t, f.patient.FullName, resp.PatientName)

	stored, ok := f.store.Appointment(resp.ID)
	require.True(t, ok)
	assert.True(t, stored.AppointmentFee.Equal(decimal.RequireFromString("1250.00")))

	logs := f.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditActionAppointmentBook, logs[0].Action)
	assert.Equal(t, actor, *logs[0].UserID)
}

func TestBookAppointment_SurchargeChangeDoesNotTouchExistingFee(t *testing.T) {
	f := newFixture(t)
	first := f.book(t, monday)

	_, err := f.settings.UpdateHospitalCharge(context.Background(), &dto.UpdateHospitalChargeRequest{Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	second := f.book(t, monday)

	stored, _ := f.store.Appointment(first.ID)
	assert.Equal(t, "1250.00", stored.AppointmentFee.StringFixed(2))
	assert.Equal(t, "1500.00", second.AppointmentFee.StringFixed(2))
}

func TestBookAppointment_DayMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.appointments.BookAppointment(context.Background(), &dto.BookAppointmentRequest{
		PatientID:       f.patient.ID,
		ScheduleID:      f.schedule.ID,
		AppointmentDate: "2025-03-11",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrDayMismatch))
	assert.Contains(t, err.Error(), "Tuesday")
	assert.Contains(t, err.Error(), "Monday")
	assert.Empty(t, f.store.AllAppointments())
}

func TestBookAppointment_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appointments.BookAppointment(ctx, &dto.BookAppointmentRequest{
		PatientID:       uuid.New(),
		ScheduleID:      f.schedule.ID,
		AppointmentDate: "2025-03-10",
	})
	assert.True(t, errors.Is(err, usecase.ErrPatientNotFound))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.appointments.BookAppointment(ctx, &dto.BookAppointmentRequest{
		PatientID:       f.patient.ID,
		ScheduleID:      999,
		AppointmentDate: "2025-03-10",
	})
	assert.True(t, errors.Is(err, usecase.ErrScheduleNotFound))
}

func TestBookAppointment_InvalidDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.appointments.BookAppointment(context.Background(), &dto.BookAppointmentRequest{
		PatientID:       f.patient.ID,
		ScheduleID:      f.schedule.ID,
		AppointmentDate: "10/03/2025",
	})

	assert.True(t, errors.Is(err, usecase.ErrInvalidDateFormat))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestBookAppointment_CapacityBoundary(t *testing.T) {
	f := newFixture(t)
	f.fill(monday, service.DailyCapacity-1)

	twentieth := f.book(t, monday)
	assert.NotEqual(t, uuid.Nil, twentieth.ID)

	_, err := f.appointments.BookAppointment(context.Background(), &dto.BookAppointmentRequest{
		PatientID:       f.patient.ID,
		ScheduleID:      f.schedule.ID,
		AppointmentDate: "2025-03-10",
	})
	assert.True(t, errors.Is(err, service.ErrCapacityExceeded))
	assert.Equal(t, apperror.KindCapacityExceeded, apperror.KindOf(err))
}

func TestBookAppointment_ConcurrentBookingsNeverOverfill(t *testing.T) {
	f := newFixture(t)
	const callers = 30

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		booked   int
		rejected int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.appointments.BookAppointment(context.Background(), &dto.BookAppointmentRequest{
				PatientID:       f.patient.ID,
				ScheduleID:      f.schedule.ID,
				AppointmentDate: "2025-03-10",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				booked++
			} else if errors.Is(err, service.ErrCapacityExceeded) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, service.DailyCapacity, booked)
	assert.Equal(t, callers-service.DailyCapacity, rejected)

	count, err := f.store.Appointments().CountActiveByDoctorAndDate(context.Background(), nil, f.doctor.ID, monday)
	require.NoError(t, err)
	assert.EqualValues(t, service.DailyCapacity, count)
}

func TestBookAppointment_AuditFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("auditLogs.Create", errors.New("disk full"))

	_, err := f.appointments.BookAppointment(context.Background(), &dto.BookAppointmentRequest{
		PatientID:       f.patient.ID,
		ScheduleID:      f.schedule.ID,
		AppointmentDate: "2025-03-10",
	})

	require.Error(t, err)
	assert.Empty(t, f.store.AllAppointments())
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, monday)

	resp, err := f.appointments.UpdateStatus(context.Background(), appt.ID, &dto.UpdateAppointmentStatusRequest{
		Status: "confirmed",
		Notes:  "arrived early",
	})

	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, "arrived early", resp.Notes)

	stored, _ := f.store.Appointment(appt.ID)
	assert.Equal(t, entity.AppointmentStatusConfirmed, stored.Status)
	assert.Equal(t, "1250.00", stored.AppointmentFee.StringFixed(2))
}

func TestUpdateStatus_RejectsLegacyAndUnknown(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, monday)

	for _, status := range []string{"PAID", "BOOKED", "SCHEDULES", "LATE"} {
		_, err := f.appointments.UpdateStatus(context.Background(), appt.ID, &dto.UpdateAppointmentStatusRequest{Status: status})
		assert.True(t, errors.Is(err, usecase.ErrInvalidAppointmentStatus), status)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), status)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.appointments.UpdateStatus(context.Background(), uuid.New(), &dto.UpdateAppointmentStatusRequest{Status: "CONFIRMED"})

	assert.True(t, errors.Is(err, usecase.ErrAppointmentNotFound))
}

func TestLegacyStatusesLoadUnchanged(t *testing.T) {
	f := newFixture(t)
	legacyID := uuid.New()
	f.store.AddAppointment(entity.Appointment{
		ID:              legacyID,
		PatientID:       f.patient.ID,
		ScheduleID:      f.schedule.ID,
		AppointmentDate: monday,
		Status:          entity.AppointmentStatus("PAID"),
		PaymentStatus:   entity.PaymentStatusPaid,
		AppointmentFee:  decimal.NewFromInt(1250),
		PaidAmount:      decimal.NewFromInt(1250),
	})

	resp, err := f.appointments.GetAppointment(context.Background(), legacyID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)

	list, err := f.appointments.GetAllAppointments(context.Background(), &dto.AppointmentListRequest{Status: "paid"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, legacyID, list.Appointments[0].ID)
}

func TestCancelAppointment_PaidWithRefund(t *testing.T) {
	f := newFixture(t)
	appt, bill := f.appointmentBill(t)
	_, err := f.payments.MarkPaid(context.Background(), bill.ID, &dto.MarkPaidRequest{PaymentMethod: "CARD"})
	require.NoError(t, err)

	resp, err := f.appointments.CancelAppointment(context.Background(), appt.ID, &dto.CancelAppointmentRequest{
		Reason:         "doctor on leave",
		RefundRequired: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, "REFUNDED", resp.PaymentStatus)
	assert.Equal(t, "1250.00", resp.RefundAmount.StringFixed(2))
	assert.NotNil(t, resp.RefundedAt)
	assert.NotNil(t, resp.CancelledAt)

	// the bill and payment stay as they were
	storedBill, ok := f.store.Bill(bill.ID)
	require.True(t, ok)
	assert.True(t, storedBill.Paid)
	assert.Len(t, f.store.AllPayments(), 1)
}

func TestCancelAppointment_UnpaidIgnoresRefund(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, monday)

	resp, err := f.appointments.CancelAppointment(context.Background(), appt.ID, &dto.CancelAppointmentRequest{RefundRequired: true})

	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, "UNPAID", resp.PaymentStatus)
	assert.True(t, resp.RefundAmount.IsZero())
	assert.Nil(t, resp.RefundedAt)
}

func TestCancelAppointment_Twice(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, monday)
	ctx := context.Background()

	_, err := f.appointments.CancelAppointment(ctx, appt.ID, &dto.CancelAppointmentRequest{})
	require.NoError(t, err)

	_, err = f.appointments.CancelAppointment(ctx, appt.ID, &dto.CancelAppointmentRequest{})
	assert.True(t, errors.Is(err, usecase.ErrAppointmentAlreadyCancelled))
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCancelAppointment_FreesCapacity(t *testing.T) {
	f := newFixture(t)
	f.fill(monday, service.DailyCapacity-1)
	last := f.book(t, monday)

	_, err := f.appointments.CancelAppointment(context.Background(), last.ID, &dto.CancelAppointmentRequest{})
	require.NoError(t, err)

	f.book(t, monday)
}

func TestRescheduleAppointment(t *testing.T) {
	f := newFixture(t)
	original := f.book(t, monday)
	f.fill(monday.AddDate(0, 0, 7), service.DailyCapacity)

	successor, err := f.appointments.RescheduleAppointment(context.Background(), original.ID)

	require.NoError(t, err)
	assert.Equal(t, "2025-03-24", successor.AppointmentDate)
	assert.Equal(t, "PENDING", successor.Status)
	assert.Equal(t, "UNPAID", successor.PaymentStatus)
	assert.Equal(t, "1250.00", successor.AppointmentFee.StringFixed(2))
	assert.Equal(t, "Rescheduled from 2025-03-10", successor.Notes)
	require.NotNil(t, successor.RescheduledFromID)
	assert.Equal(t, original.ID, *successor.RescheduledFromID)

	stored, _ := f.store.Appointment(original.ID)
	assert.Equal(t, entity.AppointmentStatusRescheduled, stored.Status)

	linked, err := f.appointments.GetRescheduledTo(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, successor.ID, linked.ID)
}

func TestRescheduleAppointment_KeepsFrozenFee(t *testing.T) {
	f := newFixture(t)
	original := f.book(t, monday)

	_, err := f.settings.UpdateHospitalCharge(context.Background(), &dto.UpdateHospitalChargeRequest{Amount: decimal.NewFromInt(2000)})
	require.NoError(t, err)

	successor, err := f.appointments.RescheduleAppointment(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, "1250.00", successor.AppointmentFee.StringFixed(2))
}

func TestRescheduleAppointment_RejectedStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cancelled := f.book(t, monday)
	_, err := f.appointments.CancelAppointment(ctx, cancelled.ID, &dto.CancelAppointmentRequest{})
	require.NoError(t, err)
	_, err = f.appointments.RescheduleAppointment(ctx, cancelled.ID)
	assert.True(t, errors.Is(err, usecase.ErrAppointmentAlreadyCancelled))
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	completed := f.book(t, monday)
	_, err = f.appointments.UpdateStatus(ctx, completed.ID, &dto.UpdateAppointmentStatusRequest{Status: "COMPLETED"})
	require.NoError(t, err)
	_, err = f.appointments.RescheduleAppointment(ctx, completed.ID)
	assert.True(t, errors.Is(err, usecase.ErrAppointmentAlreadyCompleted))
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	moved := f.book(t, monday)
	_, err = f.appointments.RescheduleAppointment(ctx, moved.ID)
	require.NoError(t, err)
	_, err = f.appointments.RescheduleAppointment(ctx, moved.ID)
	assert.True(t, errors.Is(err, usecase.ErrAppointmentRescheduled))
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestRescheduleAppointment_NoSlotLeavesOriginalUntouched(t *testing.T) {
	f := newFixture(t)
	original := f.book(t, monday)
	for d := monday.AddDate(0, 0, 7); d.Before(monday.AddDate(0, 0, service.RescheduleHorizonDays)); d = d.AddDate(0, 0, 7) {
		f.fill(d, service.DailyCapacity)
	}
	before := len(f.store.AllAppointments())

	_, err := f.appointments.RescheduleAppointment(context.Background(), original.ID)

	assert.True(t, errors.Is(err, service.ErrNoSlotAvailable))
	stored, _ := f.store.Appointment(original.ID)
	assert.Equal(t, entity.AppointmentStatusPending, stored.Status)
	assert.Len(t, f.store.AllAppointments(), before)
}

func TestRescheduleAppointment_FailureIsAtomic(t *testing.T) {
	f := newFixture(t)
	original := f.book(t, monday)
	f.store.FailOn("appointments.Update", errors.New("deadlock detected"))

	_, err := f.appointments.RescheduleAppointment(context.Background(), original.ID)
	require.Error(t, err)

	stored, _ := f.store.Appointment(original.ID)
	assert.Equal(t, entity.AppointmentStatusPending, stored.Status)
	assert.Len(t, f.store.AllAppointments(), 1)
}

func TestRescheduleAppointment_ConcurrentCallsCreateOneSuccessor(t *testing.T) {
	f := newFixture(t)
	original := f.book(t, monday)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.appointments.RescheduleAppointment(context.Background(), original.ID)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, usecase.ErrAppointmentRescheduled))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)

	successors := 0
	for _, a := range f.store.AllAppointments() {
		if a.RescheduledFromID != nil && *a.RescheduledFromID == original.ID {
			successors++
		}
	}
	assert.Equal(t, 1, successors)
}

func TestGetRescheduledTo_NotRescheduled(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, monday)

	_, err := f.appointments.GetRescheduledTo(context.Background(), appt.ID)

	assert.True(t, errors.Is(err, usecase.ErrAppointmentNotFound))
}

func TestGetAllAppointments_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.book(t, monday)
	f.book(t, monday.AddDate(0, 0, 7))
	_, err := f.appointments.CancelAppointment(ctx, first.ID, &dto.CancelAppointmentRequest{})
	require.NoError(t, err)

	byDate, err := f.appointments.GetAllAppointments(ctx, &dto.AppointmentListRequest{Date: "2025-03-17"})
	require.NoError(t, err)
	assert.Equal(t, 1, byDate.Total)

	byStatus, err := f.appointments.GetAllAppointments(ctx, &dto.AppointmentListRequest{Status: "CANCELLED"})
	require.NoError(t, err)
	require.Equal(t, 1, byStatus.Total)
	assert.Equal(t, first.ID, byStatus.Appointments[0].ID)

	doctorID := f.doctor.ID
	byDoctor, err := f.appointments.GetAllAppointments(ctx, &dto.AppointmentListRequest{DoctorID: &doctorID})
	require.NoError(t, err)
	assert.Equal(t, 2, byDoctor.Total)
	assert.Equal(t, "2025-03-17", byDoctor.Appointments[0].AppointmentDate)

	other := uuid.New()
	none, err := f.appointments.GetAllAppointments(ctx, &dto.AppointmentListRequest{PatientID: &other})
	require.NoError(t, err)
	assert.Zero(t, none.Total)

	_, err = f.appointments.GetAllAppointments(ctx, &dto.AppointmentListRequest{Date: "March"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

