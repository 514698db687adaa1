package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/service"
	"clinic-billing-core/internal/testutil/memstore"
	"clinic-billing-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-10 is a Monday.
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type allocatorFixture struct {
	store     *memstore.Store
	allocator service.SlotAllocator
	doctorID  uuid.UUID
	schedule  entity.DoctorSchedule
	patientID uuid.UUID
}

func newAllocatorFixture(t *testing.T, day string) *allocatorFixture {
	t.Helper()

	store := memstore.New()
	doctorID := uuid.New()
	patientID := uuid.New()
	schedule := entity.DoctorSchedule{ID: 1, DoctorID: doctorID, Day: day, StartTime: "09:00", EndTime: "12:00"}

	store.AddPatient(entity.Patient{ID: patientID, FullName: "Nimal Perera"})
	store.AddDoctor(entity.Doctor{ID: doctorID, FullName: "Dr. Silva", ChannellingFee: decimal.NewFromInt(2000)})
	store.AddSchedule(schedule)

	return &allocatorFixture{
		store:     store,
		allocator: service.NewSlotAllocator(quietLogger(), store.Appointments()),
		doctorID:  doctorID,
		schedule:  schedule,
		patientID: patientID,
	}
}

func (f *allocatorFixture) fill(date time.Time, n int, status entity.AppointmentStatus) {
	for i := 0; i < n; i++ {
		f.store.AddAppointment(entity.Appointment{
			ID:              uuid.New(),
			PatientID:       f.patientID,
			ScheduleID:      f.schedule.ID,
			AppointmentDate: date,
			Status:          status,
			PaymentStatus:   entity.PaymentStatusUnpaid,
			AppointmentFee:  decimal.NewFromInt(2750),
		})
	}
}

func TestCheckAvailability_DayMismatch(t *testing.T) {
	f := newAllocatorFixture(t, "Monday")

	err := f.allocator.CheckAvailability(context.Background(), nil, f.doctorID, f.schedule.Day, monday.AddDate(0, 0, 1))

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrDayMismatch))
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
	assert.Equal(t, "doctor is not available on Tuesday, this schedule is for Mondays", err.Error())
}

func TestCheckAvailability_DayIsCaseInsensitive(t *testing.T) {
	f := newAllocatorFixture(t, "MONDAY")

	err := f.allocator.CheckAvailability(context.Background(), nil, f.doctorID, f.schedule.Day, monday)

	assert.NoError(t, err)
}

func TestCheckAvailability_UnknownDayNeverMatches(t *testing.T) {
	f := newAllocatorFixture(t, "Funday")

	err := f.allocator.CheckAvailability(context.Background(), nil, f.doctorID, f.schedule.Day, monday)

	assert.True(t, errors.Is(err, service.ErrDayMismatch))
}

func TestCheckAvailability_Capacity(t *testing.T) {
	f := newAllocatorFixture(t, "Monday")
	ctx := context.Background()

	f.fill(monday, service.DailyCapacity-1, entity.AppointmentStatusPending)
	require.NoError(t, f.allocator.CheckAvailability(ctx, nil, f.doctorID, "Monday", monday))

	f.fill(monday, 1, entity.AppointmentStatusConfirmed)
	err := f.allocator.CheckAvailability(ctx, nil, f.doctorID, "Monday", monday)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrCapacityExceeded))
	assert.Equal(t, apperror.KindCapacityExceeded, apperror.KindOf(err))
}

func TestCheckAvailability_InactiveAppointmentsFreeCapacity(t *testing.T) {
	f := newAllocatorFixture(t, "Monday")

	f.fill(monday, service.DailyCapacity-1, entity.AppointmentStatusPending)
	f.fill(monday, 5, entity.AppointmentStatusCancelled)
	f.fill(monday, 5, entity.AppointmentStatusRescheduled)

	assert.NoError(t, f.allocator.CheckAvailability(context.Background(), nil, f.doctorID, "Monday", monday))
}

func TestCheckAvailability_LegacyStatusesCount(t *testing.T) {
	f := newAllocatorFixture(t, "Monday")

	f.fill(monday, service.DailyCapacity, entity.AppointmentStatus("BOOKED"))

	err := f.allocator.CheckAvailability(context.Background(), nil, f.doctorID, "Monday", monday)
	assert.True(t, errors.Is(err, service.ErrCapacityExceeded))
}

func TestCheckAvailability_OtherDoctorsDoNotCount(t *testing.T) {
	f := newAllocatorFixture(t, "Monday")
	f.fill(monday, service.DailyCapacity, entity.AppointmentStatusPending)

	err := f.allocator.CheckAvailability(context.Background(), nil, uuid.New(), "Monday", monday)

	assert.NoError(t, err)
}

func TestFindNextAvailable_SkipsFullDates(t *testing.T) {
	f := newAllocatorFixture(t, "Monday")
	ctx := context.Background()

	next, err := f.allocator.FindNextAvailable(ctx, nil, f.doctorID, "Monday", monday)
	require.NoError(t, err)
	assert.Equal(t, monday.AddDate(0, 0, 7), next)

	f.fill(monday.AddDate(0, 0, 7), service.DailyCapacity, entity.AppointmentStatusPending)

	next, err = f.allocator.FindNextAvailable(ctx, nil, f.doctorID, "Monday", monday)
	require.NoError(t, err)
	assert.Equal(t, monday.AddDate(0, 0, 14), next)
}

func TestFindNextAvailable_HorizonIsExclusive(t *testing.T) {
	f := newAllocatorFixture(t, "Monday")

	// from+60 lands exactly on a Monday, which must not be offered
	from := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)
	limit := from.AddDate(0, 0, service.RescheduleHorizonDays)
	require.Equal(t, time.Monday, limit.Weekday())

	for d := monday; d.Before(limit); d = d.AddDate(0, 0, 7) {
		f.fill(d, service.DailyCapacity, entity.AppointmentStatusPending)
	}

	_, err := f.allocator.FindNextAvailable(context.Background(), nil, f.doctorID, "Monday", from)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNoSlotAvailable))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestFindNextAvailable_UnknownDay(t *testing.T) {
	f := newAllocatorFixture(t, "")

	_, err := f.allocator.FindNextAvailable(context.Background(), nil, f.doctorID, "", monday)

	assert.True(t, errors.Is(err, service.ErrNoSlotAvailable))
}

func TestFindNextAvailable_StorageError(t *testing.T) {
	f := newAllocatorFixture(t, "Monday")
	boom := errors.New("connection refused")
	f.store.FailOn("appointments.CountActiveByDoctorAndDate", boom)

	_, err := f.allocator.FindNextAvailable(context.Background(), nil, f.doctorID, "Monday", monday)

	assert.ErrorIs(t, err, boom)
}
