package repository

import (
	"context"
	"errors"

	"clinic-billing-core/internal/domain/entity"
	domainRepo "clinic-billing-core/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type systemSettingRepository struct{}

func NewSystemSettingRepository() domainRepo.SystemSettingRepository {
	return &systemSettingRepository{}
}

func (r *systemSettingRepository) FindByKey(ctx context.Context, db *gorm.DB, key string) (*entity.SystemSetting, error) {
	var setting entity.SystemSetting
	err := db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

func (r *systemSettingRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.SystemSetting, error) {
	var settings []entity.SystemSetting
	if err := db.WithContext(ctx).Order("setting_key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *systemSettingRepository) Upsert(ctx context.Context, db *gorm.DB, setting *entity.SystemSetting) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "description", "updated_at"}),
	}).Create(setting).Error
}
