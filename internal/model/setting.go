package model

import "time"

// LoyaltySettingKey is the system setting consumed by the sale flow.
const LoyaltySettingKey = "loyalty_program"

// SystemSetting is a keyed JSON document.
type SystemSetting struct {
	Identity
	SettingKey   string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"setting_key"`
	SettingValue map[string]any `gorm:"type:text;serializer:json;not null" json:"setting_value"`
	Description  string         `gorm:"type:text" json:"description"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
