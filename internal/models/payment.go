package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one scheduled installment owed to a participation.
// Exactly one of Quintals (fixed leases) or Percentage (share leases) is set.
type Payment struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	LeaseID         uint                `gorm:"not null;index" json:"lease_id"`
	ParticipationID uint                `gorm:"not null;index" json:"participation_id"`
	DueDate         time.Time           `gorm:"type:date;not null;index" json:"due_date"`
	Status          string              `gorm:"size:20;default:pending;not null;index" json:"status"`
	Quintals        decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"quintals"`
	Percentage      decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"percentage"`
	AveragingPolicy *string             `gorm:"size:40" json:"averaging_policy"`
	PriceSource     string              `gorm:"size:10" json:"price_source"`
	UnitPrice       decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"unit_price"`
	Amount          decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"amount"`
	PricedAt        *time.Time          `json:"priced_at"`
	PaidAt          *time.Time          `json:"paid_at"`
	CreatedAt       time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// Associations
	Participation Participation `gorm:"foreignKey:ParticipationID" json:"participation,omitempty"`
	Quotes        []PriceQuote  `gorm:"many2many:payment_quotes;" json:"quotes,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusOverdue   = "overdue"
	PaymentStatusPaid      = "paid"
	PaymentStatusCancelled = "cancelled"
)

// IsQuantityBased returns true if the installment is denominated in quintals
func (p Payment) IsQuantityBased() bool {
	return p.Quintals.Valid
}

// IsPriced returns true once a unit price or amount has been stored
func (p Payment) IsPriced() bool {
	return p.UnitPrice.Valid || p.Amount.Valid
}

// IsOpen returns true while the installment can still be invoiced or cancelled
func (p Payment) IsOpen() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusOverdue
}

// MayMarkOverdue returns true if the payment can move to overdue
func (p Payment) MayMarkOverdue() bool {
	return p.Status == PaymentStatusPending
}

// MayPay returns true if the payment can be invoiced
func (p Payment) MayPay() bool {
	return p.IsOpen()
}

// MayCancel returns true if the payment can be cancelled
func (p Payment) MayCancel() bool {
	return p.IsOpen()
}

// Policy returns the averaging policy copied from the lease, or "" if none
func (p Payment) Policy() string {
	if p.AveragingPolicy == nil {
		return ""
	}
	return *p.AveragingPolicy
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID              uint                `json:"id"`
	LeaseID         uint                `json:"lease_id"`
	ParticipationID uint                `json:"participation_id"`
	LandlordID      uint                `json:"landlord_id,omitempty"`
	DueDate         string              `json:"due_date"`
	Status          string              `json:"status"`
	Quintals        decimal.NullDecimal `json:"quintals"`
	Percentage      decimal.NullDecimal `json:"percentage"`
	AveragingPolicy string              `json:"averaging_policy,omitempty"`
	PriceSource     string              `json:"price_source,omitempty"`
	UnitPrice       decimal.NullDecimal `json:"unit_price"`
	Amount          decimal.NullDecimal `json:"amount"`
	PricedAt        *time.Time          `json:"priced_at"`
	PaidAt          *time.Time          `json:"paid_at"`
	QuoteCount      int                 `json:"quote_count"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:              p.ID,
		LeaseID:         p.LeaseID,
		ParticipationID: p.ParticipationID,
		DueDate:         p.DueDate.Format(DateLayout),
		Status:          p.Status,
		Quintals:        p.Quintals,
		Percentage:      p.Percentage,
		AveragingPolicy: p.Policy(),
		PriceSource:     p.PriceSource,
		UnitPrice:       p.UnitPrice,
		Amount:          p.Amount,
		PricedAt:        p.PricedAt,
		PaidAt:          p.PaidAt,
		QuoteCount:      len(p.Quotes),
	}
	if p.Participation.ID != 0 {
		resp.LandlordID = p.Participation.LandlordID
	}
	return resp
}
