package repository

import (
	"context"

	"clinic-billing-core/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillRepository interface {
	Create(ctx context.Context, db *gorm.DB, bill *entity.Bill) error
	// FindByID loads the bill with its items.
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Bill, error)
	// FindByIDForUpdate locks the bill row, then loads its items.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Bill, error)
	FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.Bill, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.BillFilter) ([]entity.Bill, error)
	// Update saves the bill columns only, never its items.
	Update(ctx context.Context, db *gorm.DB, bill *entity.Bill) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	SumPaidTotals(ctx context.Context, db *gorm.DB) (decimal.Decimal, error)
}

type BillItemRepository interface {
	Create(ctx context.Context, db *gorm.DB, item *entity.BillItem) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.BillItem, error)
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	DeleteByBillID(ctx context.Context, db *gorm.DB, billID uuid.UUID) error
}
