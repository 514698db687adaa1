package usecase_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/delivery/http/middleware"
	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/service"
	"clinic-billing-core/internal/testutil/memstore"
	"clinic-billing-core/internal/usecase"
	"clinic-billing-core/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// 2025-03-10 is a Monday.
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

const (
	bloodTestID      = 1
	xrayID           = 2
	inactiveTestID   = 3
	bloodTestUpperID = 4
)

type recordingNotifications struct {
	mu   sync.Mutex
	sent []service.PaymentConfirmation
}

func (r *recordingNotifications) NotifyPaymentConfirmed(msg service.PaymentConfirmation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
}

func (r *recordingNotifications) messages() []service.PaymentConfirmation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]service.PaymentConfirmation(nil), r.sent...)
}

type fixture struct {
	store         *memstore.Store
	notifications *recordingNotifications

	appointments usecase.AppointmentUsecase
	bills        usecase.BillUsecase
	payments     usecase.PaymentUsecase
	history      usecase.PatientHistoryUsecase
	settings     usecase.SystemSettingUsecase
	auditLogs    usecase.AuditLogUsecase

	patient  entity.Patient
	doctor   entity.Doctor
	schedule entity.DoctorSchedule
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memstore.New()
	notifications := &recordingNotifications{}

	patient := entity.Patient{ID: uuid.New(), FullName: "Kamala Fernando"}
	doctor := entity.Doctor{
		ID:             uuid.New(),
		FullName:       "Dr. Perera",
		Specialization: "Cardiology",
		ChannellingFee: decimal.RequireFromString("500.00"),
	}
	schedule := entity.DoctorSchedule{ID: 7, DoctorID: doctor.ID, Day: "Monday", StartTime: "09:00", EndTime: "12:00"}

	store.AddPatient(patient)
	store.AddDoctor(doctor)
	store.AddSchedule(schedule)
	store.AddMedicalTest(entity.MedicalTest{ID: bloodTestID, Name: "Blood Test", Type: "LAB", Price: decimal.RequireFromString("500.00"), Active: true})
	store.AddMedicalTest(entity.MedicalTest{ID: xrayID, Name: "X-Ray", Type: "RADIOLOGY", Price: decimal.RequireFromString("1500.00"), Active: true})
	store.AddMedicalTest(entity.MedicalTest{ID: inactiveTestID, Name: "MRI", Type: "RADIOLOGY", Price: decimal.RequireFromString("9000.00"), Active: false})
	store.AddMedicalTest(entity.MedicalTest{ID: bloodTestUpperID, Name: "BLOOD TEST", Type: "LAB", Price: decimal.RequireFromString("650.00"), Active: true})

	slotAllocator := service.NewSlotAllocator(log, store.Appointments())
	settingService := service.NewSettingService(log, store.SystemSettings())
	auditService := service.NewAuditService(log, store.AuditLogRepo())

	return &fixture{
		store:         store,
		notifications: notifications,
		appointments: usecase.NewAppointmentUsecase(store, log, store.Appointments(), store.Patients(), store.Schedules(),
			slotAllocator, memstore.NewSlotLocker(), settingService, auditService),
		bills: usecase.NewBillUsecase(store, log, store.Bills(), store.BillItems(), store.Appointments(), store.Patients(),
			store.MedicalTests(), settingService, auditService),
		payments:  usecase.NewPaymentUsecase(store, log, store.Bills(), store.Payments(), store.Appointments(), auditService, notifications),
		history:   usecase.NewPatientHistoryUsecase(store, log, store.Patients(), store.Appointments(), store.Bills(), store.Payments()),
		settings:  usecase.NewSystemSettingUsecase(store, log, settingService, auditService),
		auditLogs: usecase.NewAuditLogUsecase(store, log, store.AuditLogRepo()),
		patient:   patient,
		doctor:    doctor,
		schedule:  schedule,
	}
}

func staffContext(userID uuid.UUID) context.Context {
	return middleware.WithClaims(context.Background(), &jwt.Claims{
		UserID:    userID,
		Role:      entity.RoleReceptionist,
		TokenType: jwt.AccessToken,
	})
}

func (f *fixture) book(t *testing.T, date time.Time) *dto.AppointmentResponse {
	t.Helper()
	resp, err := f.appointments.BookAppointment(context.Background(), &dto.BookAppointmentRequest{
		PatientID:       f.patient.ID,
		ScheduleID:      f.schedule.ID,
		AppointmentDate: date.Format(time.DateOnly),
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) fill(date time.Time, n int) {
	for i := 0; i < n; i++ {
		f.store.AddAppointment(entity.Appointment{
			ID:              uuid.New(),
			PatientID:       f.patient.ID,
			ScheduleID:      f.schedule.ID,
			AppointmentDate: date,
			Status:          entity.AppointmentStatusPending,
			PaymentStatus:   entity.PaymentStatusUnpaid,
			AppointmentFee:  decimal.RequireFromString("1250.00"),
		})
	}
}

func (f *fixture) appointmentBill(t *testing.T) (*dto.AppointmentResponse, *dto.BillResponse) {
	t.Helper()
	appt := f.book(t, monday)
	bill, err := f.bills.CreateAppointmentBill(context.Background(), &dto.CreateAppointmentBillRequest{AppointmentID: appt.ID})
	require.NoError(t, err)
	return appt, bill
}

func actionsOf(logs []entity.AuditLog) []string {
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}
