package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is one day's published grain price for a market source
type PriceQuote struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Date        time.Time       `gorm:"type:date;not null;uniqueIndex:idx_price_quotes_date_source" json:"date"`
	Source      string          `gorm:"size:10;not null;uniqueIndex:idx_price_quotes_date_source;index" json:"source"`
	PricePerTon decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price_per_ton"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for PriceQuote
func (PriceQuote) TableName() string {
	return "price_quotes"
}

// Price source constants
const (
	PriceSourceBCR = "BCR" // Rosario board of trade
	PriceSourceAGD = "AGD"
)

// IsValidPriceSource reports whether the source is one of the known markets
func IsValidPriceSource(source string) bool {
	return source == PriceSourceBCR || source == PriceSourceAGD
}

// Averaging policy constants
const (
	AveragingLast5BusinessDays  = "last_5_business_days"
	AveragingLast10BusinessDays = "last_10_business_days"
	AveragingDays10To15         = "days_10_to_15_current_month"
	AveragingPriorMonthAll      = "prior_month_all"
)

// PriceQuoteResponse is the JSON response format for price quotes
type PriceQuoteResponse struct {
	ID          uint            `json:"id"`
	Date        string          `json:"date"`
	Source      string          `json:"source"`
	PricePerTon decimal.Decimal `json:"price_per_ton"`
}

// ToResponse converts PriceQuote to PriceQuoteResponse
func (q *PriceQuote) ToResponse() PriceQuoteResponse {
	return PriceQuoteResponse{
		ID:          q.ID,
		Date:        q.Date.Format(DateLayout),
		Source:      q.Source,
		PricePerTon: q.PricePerTon,
	}
}
