package usecase

import (
	"context"
	"errors"

	"clinic-billing-core/internal/converter"
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/domain/repository"
	"clinic-billing-core/internal/service"
	"clinic-billing-core/pkg/apperror"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidHospitalCharge = errors.New("hospital charge must not be negative")
	ErrEmptySpecializations  = errors.New("at least one specialization is required")
)

type SystemSettingUsecase interface {
	GetAllSettings(ctx context.Context) (*dto.SystemSettingListResponse, error)
	GetHospitalCharge(ctx context.Context) (*dto.HospitalChargeResponse, error)
	UpdateHospitalCharge(ctx context.Context, req *dto.UpdateHospitalChargeRequest) (*dto.SystemSettingResponse, error)
	GetSpecializations(ctx context.Context) (*dto.SpecializationsResponse, error)
	UpdateSpecializations(ctx context.Context, req *dto.UpdateSpecializationsRequest) (*dto.SystemSettingResponse, error)
}

type systemSettingUsecase struct {
	transactor     repository.Transactor
	log            *logrus.Logger
	settingService service.SettingService
	auditService   service.AuditService
}

func NewSystemSettingUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	settingService service.SettingService,
	auditService service.AuditService,
) SystemSettingUsecase {
	return &systemSettingUsecase{
		transactor:     transactor,
		log:            log,
		settingService: settingService,
		auditService:   auditService,
	}
}

func (u *systemSettingUsecase) GetAllSettings(ctx context.Context) (*dto.SystemSettingListResponse, error) {
	settings, err := u.settingService.GetAll(ctx, u.transactor.DB(ctx))
	if err != nil {
		return nil, err
	}

	return &dto.SystemSettingListResponse{
		Settings: converter.SystemSettingsToResponses(settings),
		Total:    len(settings),
	}, nil
}

func (u *systemSettingUsecase) GetHospitalCharge(ctx context.Context) (*dto.HospitalChargeResponse, error) {
	charge, err := u.settingService.GetHospitalCharge(ctx, u.transactor.DB(ctx))
	if err != nil {
		return nil, err
	}
	return &dto.HospitalChargeResponse{Amount: charge}, nil
}

// UpdateHospitalCharge affects bills created afterwards. Existing bills and
// the fees already frozen on appointments keep their amounts.
func (u *systemSettingUsecase) UpdateHospitalCharge(ctx context.Context, req *dto.UpdateHospitalChargeRequest) (*dto.SystemSettingResponse, error) {
	if req.Amount.IsNegative() {
		return nil, apperror.Validation(ErrInvalidHospitalCharge, "", map[string]interface{}{"amount": req.Amount})
	}

	var setting *entity.SystemSetting
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		old, err := u.settingService.GetHospitalCharge(ctx, tx)
		if err != nil {
			return err
		}

		setting, err = u.settingService.SetHospitalCharge(ctx, tx, req.Amount)
		if err != nil {
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionSettingUpdate,
			"system_setting", entity.SettingKeyHospitalCharge,
			map[string]interface{}{"value": old.StringFixed(2)},
			map[string]interface{}{"value": setting.SettingValue})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Hospital charge set to %s", req.Amount.StringFixed(2))

	return converter.SystemSettingToResponse(setting), nil
}

func (u *systemSettingUsecase) GetSpecializations(ctx context.Context) (*dto.SpecializationsResponse, error) {
	specializations, err := u.settingService.GetSpecializations(ctx, u.transactor.DB(ctx))
	if err != nil {
		return nil, err
	}
	return &dto.SpecializationsResponse{Specializations: specializations}, nil
}

func (u *systemSettingUsecase) UpdateSpecializations(ctx context.Context, req *dto.UpdateSpecializationsRequest) (*dto.SystemSettingResponse, error) {
	if len(req.Specializations) == 0 {
		return nil, apperror.Validation(ErrEmptySpecializations, "", nil)
	}

	var setting *entity.SystemSetting
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		old, err := u.settingService.GetSpecializations(ctx, tx)
		if err != nil {
			return err
		}

		setting, err = u.settingService.SetSpecializations(ctx, tx, req.Specializations)
		if err != nil {
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionSettingUpdate,
			"system_setting", entity.SettingKeySpecializations,
			map[string]interface{}{"value": old},
			map[string]interface{}{"value": setting.SettingValue})
	})
	if err != nil {
		return nil, err
	}

	return converter.SystemSettingToResponse(setting), nil
}
