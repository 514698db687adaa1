package repository

import (
	"context"

	"clinic-billing-core/internal/domain/entity"

	"gorm.io/gorm"
)

type SystemSettingRepository interface {
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*entity.SystemSetting, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.SystemSetting, error)
	// Upsert inserts the setting or overwrites value and description on key conflict.
	Upsert(ctx context.Context, db *gorm.DB, setting *entity.SystemSetting) error
}
