package service

import (
	"context"
	"sort"
	"strings"

	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultHospitalCharge  = "750.00"
	defaultSpecializations = "Cardiology,Dermatology,ENT,General Practice,Gynaecology," +
		"Neurology,Ophthalmology,Orthopaedics,Paediatrics,Psychiatry,Radiology,Urology"
)

// DefaultHospitalCharge is used when the setting is absent or unparsable.
var DefaultHospitalCharge = decimal.RequireFromString(defaultHospitalCharge)

// SettingService resolves administrator-managed values. Every read goes to
// the store so a changed surcharge applies to the next bill.
type SettingService interface {
	GetHospitalCharge(ctx context.Context, db *gorm.DB) (decimal.Decimal, error)
	SetHospitalCharge(ctx context.Context, db *gorm.DB, amount decimal.Decimal) (*entity.SystemSetting, error)
	GetSpecializations(ctx context.Context, db *gorm.DB) ([]string, error)
	SetSpecializations(ctx context.Context, db *gorm.DB, specializations []string) (*entity.SystemSetting, error)
	GetAll(ctx context.Context, db *gorm.DB) ([]entity.SystemSetting, error)
}

type settingService struct {
	log         *logrus.Logger
	settingRepo repository.SystemSettingRepository
}

func NewSettingService(log *logrus.Logger, settingRepo repository.SystemSettingRepository) SettingService {
	return &settingService{
		log:         log,
		settingRepo: settingRepo,
	}
}

func (s *settingService) getValue(ctx context.Context, db *gorm.DB, key, defaultValue string) (string, error) {
	setting, err := s.settingRepo.FindByKey(ctx, db, key)
	if err != nil {
		s.log.Warnf("Failed to read setting %s: %+v", key, err)
		return "", err
	}
	if setting == nil {
		return defaultValue, nil
	}
	return setting.SettingValue, nil
}

func (s *settingService) setValue(ctx context.Context, db *gorm.DB, key, value, description string) (*entity.SystemSetting, error) {
	setting := &entity.SystemSetting{
		SettingKey:   key,
		SettingValue: value,
		Description:  description,
	}
	if err := s.settingRepo.Upsert(ctx, db, setting); err != nil {
		s.log.Warnf("Failed to save setting %s: %+v", key, err)
		return nil, err
	}
	return setting, nil
}

func (s *settingService) GetHospitalCharge(ctx context.Context, db *gorm.DB) (decimal.Decimal, error) {
	raw, err := s.getValue(ctx, db, entity.SettingKeyHospitalCharge, defaultHospitalCharge)
	if err != nil {
		return decimal.Zero, err
	}

	charge, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		s.log.Warnf("Invalid hospital charge %q, using default %s", raw, defaultHospitalCharge)
		return DefaultHospitalCharge, nil
	}
	return charge, nil
}

func (s *settingService) SetHospitalCharge(ctx context.Context, db *gorm.DB, amount decimal.Decimal) (*entity.SystemSetting, error) {
	return s.setValue(ctx, db, entity.SettingKeyHospitalCharge, amount.StringFixed(2),
		"Hospital charge added to every appointment bill")
}

func (s *settingService) GetSpecializations(ctx context.Context, db *gorm.DB) ([]string, error) {
	raw, err := s.getValue(ctx, db, entity.SettingKeySpecializations, defaultSpecializations)
	if err != nil {
		return nil, err
	}
	return normalizeSpecializations(strings.Split(raw, ","), false), nil
}

func (s *settingService) SetSpecializations(ctx context.Context, db *gorm.DB, specializations []string) (*entity.SystemSetting, error) {
	joined := strings.Join(normalizeSpecializations(specializations, true), ",")
	return s.setValue(ctx, db, entity.SettingKeySpecializations, joined,
		"Comma-separated list of doctor specializations")
}

func (s *settingService) GetAll(ctx context.Context, db *gorm.DB) ([]entity.SystemSetting, error) {
	settings, err := s.settingRepo.FindAll(ctx, db)
	if err != nil {
		s.log.Warnf("Failed to list settings: %+v", err)
		return nil, err
	}
	return settings, nil
}

// normalizeSpecializations trims, drops blanks and sorts. Duplicates are
// only removed when dedupe is set, matching what was stored.
func normalizeSpecializations(values []string, dedupe bool) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if dedupe {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
		}
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}
