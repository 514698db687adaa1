package entity

import "time"

// Setting keys
const (
	SettingKeyHospitalCharge  = "hospital_charge"
	SettingKeySpecializations = "specializations"
)

// SystemSetting is an administrator-managed key/value pair
type SystemSetting struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	SettingKey   string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"setting_key"`
	SettingValue string    `gorm:"type:text;not null" json:"setting_value"`
	Description  string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
