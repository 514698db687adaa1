package repository

import (
	"context"
	"errors"
	"time"

	"clinic-billing-core/internal/domain/entity"
	domainRepo "clinic-billing-core/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Omit("Patient", "Schedule").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Patient").
		Preload("Schedule.Doctor").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// FindByIDForUpdate locks only the appointment row; relations are loaded
// by separate plain selects so the lock clause stays on one table.
func (r *appointmentRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := db.WithContext(ctx).Where("id = ?", appointment.PatientID).First(&appointment.Patient).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := db.WithContext(ctx).Preload("Doctor").Where("id = ?", appointment.ScheduleID).First(&appointment.Schedule).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.WithContext(ctx).Model(&entity.Appointment{})

	if filter != nil {
		if filter.Status != "" {
			query = query.Where("appointments.status = ?", filter.Status)
		}
		if filter.PatientID != nil {
			query = query.Where("appointments.patient_id = ?", *filter.PatientID)
		}
		if filter.Date != nil {
			query = query.Where("appointments.appointment_date = ?", entity.NormalizeDate(*filter.Date))
		}
		if filter.DoctorID != nil {
			query = query.
				Joins("JOIN doctor_schedules ON doctor_schedules.id = appointments.schedule_id").
				Where("doctor_schedules.doctor_id = ?", *filter.DoctorID)
		}
	}

	err := query.
		Preload("Patient").
		Preload("Schedule.Doctor").
		Order("appointments.appointment_date DESC, appointments.created_at DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByRescheduledFrom(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Schedule.Doctor").
		Where("rescheduled_from_id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	// appointment_fee and rescheduled_from_id are written once, at creation
	return db.WithContext(ctx).
		Model(appointment).
		Select("*").
		Omit("Patient", "Schedule", "AppointmentFee", "RescheduledFromID", "CreatedAt").
		Updates(appointment).Error
}

func (r *appointmentRepository) CountActiveByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Joins("JOIN doctor_schedules ON doctor_schedules.id = appointments.schedule_id").
		Where("doctor_schedules.doctor_id = ?", doctorID).
		Where("appointments.appointment_date = ?", entity.NormalizeDate(date)).
		Where("appointments.status NOT IN ?", []entity.AppointmentStatus{
			entity.AppointmentStatusCancelled,
			entity.AppointmentStatusRescheduled,
		}).
		Count(&count).Error
	return count, err
}
