package repository

import (
	"context"
	"errors"

	"clinic-billing-core/internal/domain/entity"
	domainRepo "clinic-billing-core/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type billRepository struct{}

func NewBillRepository() domainRepo.BillRepository {
	return &billRepository{}
}

func (r *billRepository) Create(ctx context.Context, db *gorm.DB, bill *entity.Bill) error {
	return db.WithContext(ctx).Omit("Items").Create(bill).Error
}

func (r *billRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := db.WithContext(ctx).Where("bill_id = ?", bill.ID).Find(&bill.Items).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := db.WithContext(ctx).Preload("Items").Where("appointment_id = ?", appointmentID).First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.BillFilter) ([]entity.Bill, error) {
	var bills []entity.Bill
	query := db.WithContext(ctx).Preload("Items")

	if filter != nil {
		if filter.PatientID != nil {
			query = query.Where("patient_id = ?", *filter.PatientID)
		}
		if filter.PatientName != "" {
			query = query.Where("patient_name ILIKE ?", "%"+filter.PatientName+"%")
		}
		if filter.Paid != nil {
			query = query.Where("paid = ?", *filter.Paid)
		}
	}

	if err := query.Order("created_at DESC").Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *billRepository) Update(ctx context.Context, db *gorm.DB, bill *entity.Bill) error {
	return db.WithContext(ctx).
		Model(bill).
		Select("TotalAmount", "Paid", "PaymentMethod", "PaidAt").
		Updates(bill).Error
}

func (r *billRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Bill{}).Error
}

func (r *billRepository) SumPaidTotals(ctx context.Context, db *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.WithContext(ctx).
		Model(&entity.Bill{}).
		Select("SUM(total_amount)").
		Where("paid = ?", true).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

type billItemRepository struct{}

func NewBillItemRepository() domainRepo.BillItemRepository {
	return &billItemRepository{}
}

func (r *billItemRepository) Create(ctx context.Context, db *gorm.DB, item *entity.BillItem) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *billItemRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.BillItem, error) {
	var item entity.BillItem
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *billItemRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.BillItem{}).Error
}

func (r *billItemRepository) DeleteByBillID(ctx context.Context, db *gorm.DB, billID uuid.UUID) error {
	return db.WithContext(ctx).Where("bill_id = ?", billID).Delete(&entity.BillItem{}).Error
}
