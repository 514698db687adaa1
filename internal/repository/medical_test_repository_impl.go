package repository

import (
	"context"
	"errors"

	"clinic-billing-core/internal/domain/entity"
	domainRepo "clinic-billing-core/internal/domain/repository"

	"gorm.io/gorm"
)

type medicalTestRepository struct{}

func NewMedicalTestRepository() domainRepo.MedicalTestRepository {
	return &medicalTestRepository{}
}

func (r *medicalTestRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.MedicalTest, error) {
	var test entity.MedicalTest
	err := db.WithContext(ctx).Where("id = ?", id).First(&test).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &test, nil
}
