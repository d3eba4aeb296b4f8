package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participation is a landlord's share of a lease. Fixed leases use the assigned
// hectares and yearly quintals per hectare; share leases use the percentage.
type Participation struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	LeaseID            uint                `gorm:"not null;index" json:"lease_id"`
	LandlordID         uint                `gorm:"not null;index" json:"landlord_id"`
	HectaresAssigned   decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0" json:"hectares_assigned"`
	QuintalsPerHectare decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0" json:"quintals_per_hectare"`
	Percentage         decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"percentage"`
	Note               *string             `gorm:"type:text" json:"note"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`

	// Associations
	Landlord Landlord `gorm:"foreignKey:LandlordID" json:"landlord,omitempty"`
}

// TableName specifies the table name for Participation
func (Participation) TableName() string {
	return "participations"
}
