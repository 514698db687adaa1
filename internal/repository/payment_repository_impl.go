package repository

import (
	"context"
	"errors"

	"clinic-billing-core/internal/domain/entity"
	domainRepo "clinic-billing-core/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type paymentRepository struct{}

func NewPaymentRepository() domainRepo.PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(ctx context.Context, db *gorm.DB, payment *entity.Payment) error {
	return db.WithContext(ctx).Omit("Bill").Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := db.WithContext(ctx).Preload("Bill").Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByBillID(ctx context.Context, db *gorm.DB, billID uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := db.WithContext(ctx).Where("bill_id = ?", billID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := db.WithContext(ctx).
		Joins("JOIN bills ON bills.id = payments.bill_id").
		Where("bills.patient_id = ?", patientID).
		Order("payments.paid_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := db.WithContext(ctx).Order("paid_at DESC").Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Payment{})
	return result.RowsAffected, result.Error
}
