package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lease represents a rural land lease between landlords and a tenant
type Lease struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	TenantID        uint                `gorm:"not null;index" json:"tenant_id"`
	Type            string              `gorm:"size:20;not null" json:"type"`
	Status          string              `gorm:"size:20;default:active;not null;index" json:"status"`
	StartDate       time.Time           `gorm:"type:date;not null" json:"start_date"`
	EndDate         time.Time           `gorm:"type:date;not null;index" json:"end_date"`
	Hectares        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"hectares"`
	PaymentTerm     string              `gorm:"size:20;not null" json:"payment_term"`
	PriceSource     string              `gorm:"size:10" json:"price_source"`
	AveragingPolicy string              `gorm:"size:40" json:"averaging_policy"`
	SharePercentage decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"share_percentage"`
	Description     *string             `gorm:"type:text" json:"description"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// Associations
	Participations []Participation `gorm:"foreignKey:LeaseID" json:"participations,omitempty"`
	Payments       []Payment       `gorm:"foreignKey:LeaseID" json:"payments,omitempty"`
}

// TableName specifies the table name for Lease
func (Lease) TableName() string {
	return "leases"
}

// Lease type constants
const (
	LeaseTypeFixed = "fixed"
	LeaseTypeShare = "share"
)

// Lease status constants
const (
	LeaseStatusActive    = "active"
	LeaseStatusOverdue   = "overdue"
	LeaseStatusFinalized = "finalized"
	LeaseStatusCancelled = "cancelled"
)

// Payment term constants. Each maps to the number of months between installments.
const (
	PaymentTermMonthly     = "monthly"
	PaymentTermBimonthly   = "bimonthly"
	PaymentTermQuarterly   = "quarterly"
	PaymentTermFourMonthly = "four_monthly"
	PaymentTermSemiannual  = "semiannual"
	PaymentTermAnnual      = "annual"
)

var paymentTermMonths = map[string]int{
	PaymentTermMonthly:     1,
	PaymentTermBimonthly:   2,
	PaymentTermQuarterly:   3,
	PaymentTermFourMonthly: 4,
	PaymentTermSemiannual:  6,
	PaymentTermAnnual:      12,
}

// TermMonths returns the number of months covered by one installment of the given term
func TermMonths(term string) (int, bool) {
	months, ok := paymentTermMonths[term]
	return months, ok
}

// TermMonths returns the months per installment for this lease
func (l *Lease) TermMonths() (int, bool) {
	return TermMonths(l.PaymentTerm)
}

// IsFixed returns true if installments are denominated in quintals
func (l *Lease) IsFixed() bool {
	return l.Type == LeaseTypeFixed
}

// MayFinalize returns true if the lease can be closed as fully paid
func (l *Lease) MayFinalize() bool {
	return l.Status == LeaseStatusActive || l.Status == LeaseStatusOverdue
}

// MayCancel returns true if the lease can be cancelled
func (l *Lease) MayCancel() bool {
	return l.Status == LeaseStatusActive || l.Status == LeaseStatusOverdue
}

// MayExpire returns true if an ended lease with unpaid installments can be flagged overdue
func (l *Lease) MayExpire() bool {
	return l.Status == LeaseStatusActive
}

// LeaseResponse is the JSON response format for leases
type LeaseResponse struct {
	ID                 uint                `json:"id"`
	TenantID           uint                `json:"tenant_id"`
	Type               string              `json:"type"`
	Status             string              `json:"status"`
	StartDate          string              `json:"start_date"`
	EndDate            string              `json:"end_date"`
	Hectares           decimal.Decimal     `json:"hectares"`
	PaymentTerm        string              `json:"payment_term"`
	PriceSource        string              `json:"price_source,omitempty"`
	AveragingPolicy    string              `json:"averaging_policy,omitempty"`
	SharePercentage    decimal.NullDecimal `json:"share_percentage"`
	ParticipationCount int                 `json:"participation_count"`
}

// ToResponse converts Lease to LeaseResponse
func (l *Lease) ToResponse() LeaseResponse {
	return LeaseResponse{
		ID:                 l.ID,
		TenantID:           l.TenantID,
		Type:               l.Type,
		Status:             l.Status,
		StartDate:          l.StartDate.Format(DateLayout),
		EndDate:            l.EndDate.Format(DateLayout),
		Hectares:           l.Hectares,
		PaymentTerm:        l.PaymentTerm,
		PriceSource:        l.PriceSource,
		AveragingPolicy:    l.AveragingPolicy,
		SharePercentage:    l.SharePercentage,
		ParticipationCount: len(l.Participations),
	}
}

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"
