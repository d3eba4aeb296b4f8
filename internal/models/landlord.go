package models

import "time"

// Landlord is a party receiving lease installments
type Landlord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:150;not null" json:"name"`
	TaxID           string    `gorm:"size:20;uniqueIndex" json:"tax_id"`
	FiscalCondition string    `gorm:"size:20;not null;default:registered" json:"fiscal_condition"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for Landlord
func (Landlord) TableName() string {
	return "landlords"
}

// Fiscal condition constants
const (
	FiscalConditionRegistered = "registered"
	// Simplified regime (monotributo) landlords are exempt from withholding.
	FiscalConditionSimplified = "simplified"
)

// IsTaxExempt returns true if no retention applies to this landlord's invoices
func (l *Landlord) IsTaxExempt() bool {
	return l.FiscalCondition == FiscalConditionSimplified
}
