package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-billing-core/internal/converter"
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/domain/repository"
	"clinic-billing-core/internal/service"
	"clinic-billing-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrPatientNotFound             = errors.New("patient not found")
	ErrScheduleNotFound            = errors.New("schedule not found")
	ErrAppointmentAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrAppointmentAlreadyCompleted = errors.New("appointment is already completed")
	ErrAppointmentRescheduled      = errors.New("appointment has already been rescheduled")
	ErrInvalidAppointmentStatus    = errors.New("invalid appointment status")
	ErrBookingBusy                 = errors.New("another booking for this doctor and date is in progress")

	// errRescheduleDateTaken means the chosen date filled up between search and lock.
	errRescheduleDateTaken = errors.New("reschedule date no longer available")
)

const maxRescheduleAttempts = 5

type AppointmentUsecase interface {
	BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error)
	RescheduleAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	GetAllAppointments(ctx context.Context, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error)
	GetRescheduledTo(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	scheduleRepo    repository.DoctorScheduleRepository
	slotAllocator   service.SlotAllocator
	slotLocker      service.SlotLocker
	settingService  service.SettingService
	auditService    service.AuditService
	now             func() time.Time
}

func NewAppointmentUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	scheduleRepo repository.DoctorScheduleRepository,
	slotAllocator service.SlotAllocator,
	slotLocker service.SlotLocker,
	settingService service.SettingService,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		transactor:      transactor,
		log:             log,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		scheduleRepo:    scheduleRepo,
		slotAllocator:   slotAllocator,
		slotLocker:      slotLocker,
		settingService:  settingService,
		auditService:    auditService,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// BookAppointment creates a PENDING appointment with the fee frozen at
// doctor fee plus the current hospital charge. The capacity count and the
// insert run under the doctor+date lock inside one transaction.
func (u *appointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		return nil, apperror.Validation(err, "", map[string]interface{}{"appointment_date": req.AppointmentDate})
	}
	date = entity.NormalizeDate(date)

	db := u.transactor.DB(ctx)

	patient, err := u.patientRepo.FindByID(ctx, db, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NotFound(ErrPatientNotFound, "patient", req.PatientID)
	}

	schedule, err := u.scheduleRepo.FindByID(ctx, db, req.ScheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule %d: %+v", req.ScheduleID, err)
		return nil, err
	}
	if schedule == nil {
		return nil, apperror.NotFound(ErrScheduleNotFound, "schedule", req.ScheduleID)
	}

	appointment := &entity.Appointment{
		ID:              uuid.New(),
		PatientID:       patient.ID,
		ScheduleID:      schedule.ID,
		AppointmentDate: date,
		Status:          entity.AppointmentStatusPending,
		PaymentStatus:   entity.PaymentStatusUnpaid,
		PaidAmount:      decimal.Zero,
		RefundAmount:    decimal.Zero,
	}

	err = u.slotLocker.WithDoctorDateLock(ctx, schedule.DoctorID, date, func(lockCtx context.Context) error {
		return u.transactor.WithinTransaction(lockCtx, func(tx *gorm.DB) error {
			if err := u.slotAllocator.CheckAvailability(lockCtx, tx, schedule.DoctorID, schedule.Day, date); err != nil {
				return err
			}

			surcharge, err := u.settingService.GetHospitalCharge(lockCtx, tx)
			if err != nil {
				return err
			}
			appointment.AppointmentFee = schedule.Doctor.ChannellingFee.Add(surcharge)

			if err := u.appointmentRepo.Create(lockCtx, tx, appointment); err != nil {
				if isForeignKeyError(err, "appointments_patient_id") {
					return apperror.NotFound(ErrPatientNotFound, "patient", req.PatientID)
				}
				u.log.Warnf("Failed to create appointment: %+v", err)
				return err
			}

			return u.auditService.LogCreate(lockCtx, tx, actorFromContext(ctx), entity.AuditActionAppointmentBook,
				"appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment))
		})
	})
	if err != nil {
		return nil, u.lockError(err)
	}

	appointment.Patient = *patient
	appointment.Schedule = *schedule

	u.log.Infof("Appointment %s booked for patient %s on %s", appointment.ID, patient.ID, date.Format(time.DateOnly))

	return converter.AppointmentToResponse(appointment), nil
}

// UpdateStatus overwrites the lifecycle status without a transition table.
// Only the current status set may be written; legacy values are refused.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	status := entity.AppointmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.IsWritable() {
		return nil, apperror.Validation(ErrInvalidAppointmentStatus,
			fmt.Sprintf("invalid appointment status: %s", req.Status),
			map[string]interface{}{"status": req.Status})
	}

	var appointment *entity.Appointment
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		appointment, err = u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", id, err)
			return err
		}
		if appointment == nil {
			return apperror.NotFound(ErrAppointmentNotFound, "appointment", id)
		}

		oldStatus := appointment.Status
		appointment.Status = status
		if req.Notes != "" {
			appointment.Notes = req.Notes
		}
		appointment.UpdatedAt = u.now()

		if err := u.appointmentRepo.Update(ctx, tx, appointment); err != nil {
			u.log.Warnf("Failed to update appointment %s status: %+v", id, err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentStatus,
			"appointment", id.String(),
			map[string]interface{}{"status": oldStatus},
			map[string]interface{}{"status": status, "notes": req.Notes})
	})
	if err != nil {
		return nil, err
	}

	return converter.AppointmentToResponse(appointment), nil
}

// CancelAppointment marks the appointment cancelled and, when asked, records
// the refund on the appointment. Bills and payments are left as they are.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	var appointment *entity.Appointment
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		appointment, err = u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", id, err)
			return err
		}
		if appointment == nil {
			return apperror.NotFound(ErrAppointmentNotFound, "appointment", id)
		}
		if appointment.IsCancelled() {
			return apperror.Conflict(ErrAppointmentAlreadyCancelled, "", map[string]interface{}{
				"appointment_id": id,
				"status":         appointment.Status,
			})
		}

		old := map[string]interface{}{
			"status":         appointment.Status,
			"payment_status": appointment.PaymentStatus,
		}

		appointment.Cancel(req.Reason, req.RefundRequired, u.now())

		if err := u.appointmentRepo.Update(ctx, tx, appointment); err != nil {
			u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentCancel,
			"appointment", id.String(), old,
			map[string]interface{}{
				"status":          appointment.Status,
				"payment_status":  appointment.PaymentStatus,
				"refund_amount":   appointment.RefundAmount,
				"reason":          req.Reason,
				"refund_required": req.RefundRequired,
			})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment %s cancelled (payment status %s)", id, appointment.PaymentStatus)

	return converter.AppointmentToResponse(appointment), nil
}

// RescheduleAppointment moves the appointment to the next date on the same
// weekly slot that still has capacity. The successor keeps the original fee
// and the original becomes RESCHEDULED in the same transaction.
func (u *appointmentUsecase) RescheduleAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	db := u.transactor.DB(ctx)

	original, err := u.appointmentRepo.FindByID(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if original == nil {
		return nil, apperror.NotFound(ErrAppointmentNotFound, "appointment", id)
	}
	if err := checkReschedulable(original); err != nil {
		return nil, err
	}

	doctorID := original.Schedule.DoctorID
	scheduleDay := original.Schedule.Day

	for attempt := 0; attempt < maxRescheduleAttempts; attempt++ {
		nextDate, err := u.slotAllocator.FindNextAvailable(ctx, db, doctorID, scheduleDay, original.AppointmentDate)
		if err != nil {
			return nil, err
		}

		successor, err := u.rescheduleTo(ctx, id, doctorID, scheduleDay, nextDate)
		if errors.Is(err, errRescheduleDateTaken) {
			u.log.Infof("Reschedule date %s for appointment %s filled up, searching again", nextDate.Format(time.DateOnly), id)
			continue
		}
		if err != nil {
			return nil, u.lockError(err)
		}

		successor.Patient = original.Patient
		successor.Schedule = original.Schedule

		u.log.Infof("Appointment %s rescheduled to %s as %s", id, nextDate.Format(time.DateOnly), successor.ID)

		return converter.AppointmentToResponse(successor), nil
	}

	return nil, apperror.Conflict(ErrBookingBusy, "could not reserve a new date, please retry", map[string]interface{}{
		"appointment_id": id,
	})
}

func (u *appointmentUsecase) rescheduleTo(ctx context.Context, id, doctorID uuid.UUID, scheduleDay string, date time.Time) (*entity.Appointment, error) {
	var successor *entity.Appointment

	err := u.slotLocker.WithDoctorDateLock(ctx, doctorID, date, func(lockCtx context.Context) error {
		return u.transactor.WithinTransaction(lockCtx, func(tx *gorm.DB) error {
			current, err := u.appointmentRepo.FindByIDForUpdate(lockCtx, tx, id)
			if err != nil {
				u.log.Warnf("Failed to lock appointment %s: %+v", id, err)
				return err
			}
			if current == nil {
				return apperror.NotFound(ErrAppointmentNotFound, "appointment", id)
			}
			if err := checkReschedulable(current); err != nil {
				return err
			}

			if err := u.slotAllocator.CheckAvailability(lockCtx, tx, doctorID, scheduleDay, date); err != nil {
				if errors.Is(err, service.ErrCapacityExceeded) {
					return errRescheduleDateTaken
				}
				return err
			}

			originID := current.ID
			successor = &entity.Appointment{
				ID:                uuid.New(),
				PatientID:         current.PatientID,
				ScheduleID:        current.ScheduleID,
				AppointmentDate:   date,
				Status:            entity.AppointmentStatusPending,
				PaymentStatus:     entity.PaymentStatusUnpaid,
				AppointmentFee:    current.AppointmentFee,
				PaidAmount:        decimal.Zero,
				RefundAmount:      decimal.Zero,
				Notes:             "Rescheduled from " + current.AppointmentDate.Format(time.DateOnly),
				RescheduledFromID: &originID,
			}

			if err := u.appointmentRepo.Create(lockCtx, tx, successor); err != nil {
				if isDuplicateKeyError(err, "rescheduled_from_id") {
					return apperror.Conflict(ErrAppointmentRescheduled, "", map[string]interface{}{"appointment_id": id})
				}
				u.log.Warnf("Failed to create rescheduled appointment for %s: %+v", id, err)
				return err
			}

			oldStatus := current.Status
			current.Status = entity.AppointmentStatusRescheduled
			current.UpdatedAt = u.now()
			if err := u.appointmentRepo.Update(lockCtx, tx, current); err != nil {
				u.log.Warnf("Failed to mark appointment %s rescheduled: %+v", id, err)
				return err
			}

			return u.auditService.LogUpdate(lockCtx, tx, actorFromContext(ctx), entity.AuditActionAppointmentReschedule,
				"appointment", id.String(),
				map[string]interface{}{"status": oldStatus, "appointment_date": current.AppointmentDate.Format(time.DateOnly)},
				map[string]interface{}{"status": current.Status, "successor_id": successor.ID, "appointment_date": date.Format(time.DateOnly)})
		})
	})
	if err != nil {
		return nil, err
	}

	return successor, nil
}

func checkReschedulable(appointment *entity.Appointment) error {
	details := map[string]interface{}{
		"appointment_id": appointment.ID,
		"status":         appointment.Status,
	}

	switch {
	case appointment.IsCancelled():
		return apperror.InvalidTransition(ErrAppointmentAlreadyCancelled, "cannot reschedule a cancelled appointment", details)
	case appointment.IsCompleted():
		return apperror.InvalidTransition(ErrAppointmentAlreadyCompleted, "cannot reschedule a completed appointment", details)
	case appointment.IsRescheduled():
		return apperror.Conflict(ErrAppointmentRescheduled, "", details)
	}
	return nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.transactor.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, apperror.NotFound(ErrAppointmentNotFound, "appointment", id)
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetAllAppointments(ctx context.Context, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error) {
	filter := &entity.AppointmentFilter{}
	if req != nil {
		// legacy status values are valid filters
		filter.Status = entity.AppointmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		filter.PatientID = req.PatientID
		filter.DoctorID = req.DoctorID
		if req.Date != "" {
			date, err := parseDate(req.Date)
			if err != nil {
				return nil, apperror.Validation(err, "", map[string]interface{}{"date": req.Date})
			}
			filter.Date = &date
		}
	}

	appointments, err := u.appointmentRepo.FindAll(ctx, u.transactor.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// GetRescheduledTo follows the rescheduled_from link backwards, one hop only.
func (u *appointmentUsecase) GetRescheduledTo(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	db := u.transactor.DB(ctx)

	original, err := u.appointmentRepo.FindByID(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if original == nil {
		return nil, apperror.NotFound(ErrAppointmentNotFound, "appointment", id)
	}

	successor, err := u.appointmentRepo.FindByRescheduledFrom(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find successor of appointment %s: %+v", id, err)
		return nil, err
	}
	if successor == nil {
		return nil, apperror.NotFound(ErrAppointmentNotFound, "rescheduled appointment for", id)
	}

	return converter.AppointmentToResponse(successor), nil
}

func (u *appointmentUsecase) lockError(err error) error {
	if errors.Is(err, service.ErrLockNotAcquired) {
		return apperror.Conflict(ErrBookingBusy, "", nil)
	}
	return err
}
