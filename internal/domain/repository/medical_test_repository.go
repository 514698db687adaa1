package repository

import (
	"context"

	"clinic-billing-core/internal/domain/entity"

	"gorm.io/gorm"
)

type MedicalTestRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.MedicalTest, error)
}
