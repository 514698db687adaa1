package converter

import (
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
)

func SystemSettingToResponse(setting *entity.SystemSetting) *dto.SystemSettingResponse {
	if setting == nil {
		return nil
	}

	return &dto.SystemSettingResponse{
		SettingKey:   setting.SettingKey,
		SettingValue: setting.SettingValue,
		Description:  setting.Description,
		UpdatedAt:    setting.UpdatedAt,
	}
}

func SystemSettingsToResponses(settings []entity.SystemSetting) []dto.SystemSettingResponse {
	responses := make([]dto.SystemSettingResponse, len(settings))
	for i := range settings {
		responses[i] = *SystemSettingToResponse(&settings[i])
	}
	return responses
}
