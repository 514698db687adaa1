package repository

import (
	"context"
	"time"

	"clinic-billing-core/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	// FindByIDForUpdate loads the row with an exclusive lock held until the transaction ends.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	FindByRescheduledFrom(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	Update(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	// CountActiveByDoctorAndDate counts appointments that are neither cancelled nor rescheduled.
	CountActiveByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) (int64, error)
}
