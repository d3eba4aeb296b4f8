package models

import "time"

// Setting is a key/value tunable read by the engine at run time
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Setting
func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	SettingMinimumTaxableBase = "MINIMUM_TAXABLE_BASE"
)
