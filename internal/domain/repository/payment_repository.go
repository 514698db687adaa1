package repository

import (
	"context"

	"clinic-billing-core/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, db *gorm.DB, payment *entity.Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Payment, error)
	FindByBillID(ctx context.Context, db *gorm.DB, billID uuid.UUID) (*entity.Payment, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Payment, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Payment, error)
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
}
