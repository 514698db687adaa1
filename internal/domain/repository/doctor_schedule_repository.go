package repository

import (
	"context"

	"clinic-billing-core/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorScheduleRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.DoctorSchedule, error)
}
