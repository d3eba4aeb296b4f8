package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/arrendamientos-api/internal/calc"
)

// Invoice is issued when a payment is settled
type Invoice struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PaymentID  uint            `gorm:"not null;uniqueIndex" json:"payment_id"`
	LandlordID uint            `gorm:"not null;index" json:"landlord_id"`
	Type       string          `gorm:"size:1;not null" json:"type"`
	Date       time.Time       `gorm:"type:date;not null" json:"date"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`

	// Associations
	Retention *Retention `gorm:"foreignKey:InvoiceID" json:"retention,omitempty"`
}

// TableName specifies the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}

// Invoice type constants
const (
	InvoiceTypeA = "A" // registered landlords, net of retention
	InvoiceTypeC = "C" // simplified regime landlords, gross
)

// Retention is the income tax withheld from a landlord on invoicing
type Retention struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PaymentID    uint            `gorm:"not null;index" json:"payment_id"`
	LandlordID   uint            `gorm:"not null;index" json:"landlord_id"`
	InvoiceID    *uint           `gorm:"index" json:"invoice_id"`
	Date         time.Time       `gorm:"type:date;not null" json:"date"`
	TaxableFloor decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"taxable_floor"`
	TaxableBase  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"taxable_base"`
	Amount       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName specifies the table name for Retention
func (Retention) TableName() string {
	return "retentions"
}

// InvoiceResponse is the JSON response format for invoices
type InvoiceResponse struct {
	ID              uint             `json:"id"`
	PaymentID       uint             `json:"payment_id"`
	LandlordID      uint             `json:"landlord_id"`
	Type            string           `json:"type"`
	Date            string           `json:"date"`
	Amount          decimal.Decimal  `json:"amount"`
	AmountInWords   string           `json:"amount_in_words"`
	RetentionAmount *decimal.Decimal `json:"retention_amount,omitempty"`
}

// ToResponse converts Invoice to InvoiceResponse
func (i *Invoice) ToResponse() InvoiceResponse {
	resp := InvoiceResponse{
		ID:            i.ID,
		PaymentID:     i.PaymentID,
		LandlordID:    i.LandlordID,
		Type:          i.Type,
		Date:          i.Date.Format(DateLayout),
		Amount:        i.Amount,
		AmountInWords: calc.AmountInWords(i.Amount),
	}
	if i.Retention != nil {
		amount := i.Retention.Amount
		resp.RetentionAmount = &amount
	}
	return resp
}
