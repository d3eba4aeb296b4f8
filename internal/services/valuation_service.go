package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/calc"
	"github.com/sjperalta/arrendamientos-api/internal/models"
)

// Quotes are published per ton; installments are counted in quintals.
var quintalsPerTon = decimal.NewFromInt(10)

// Valuation is the price computed for a quantity-based installment
type Valuation struct {
	Average   decimal.Decimal
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
	Quotes    []models.PriceQuote
}

// ValuationService converts an installment's quintals into money
type ValuationService struct {
	averaging *AveragingService
}

func NewValuationService(averaging *AveragingService) *ValuationService {
	return &ValuationService{averaging: averaging}
}

// Value prices a payment without storing anything
func (s *ValuationService) Value(ctx context.Context, payment *models.Payment) (*Valuation, error) {
	if !payment.IsQuantityBased() {
		return nil, fmt.Errorf("%w: payment %d", ErrNotPriceable, payment.ID)
	}
	if payment.IsPriced() {
		return nil, fmt.Errorf("%w: payment %d", ErrAlreadyPriced, payment.ID)
	}

	avg, quotes, err := s.averaging.Average(ctx, payment)
	if err != nil {
		return nil, err
	}

	unitPrice := calc.Round2(avg.Div(quintalsPerTon))
	return &Valuation{
		Average:   avg,
		UnitPrice: unitPrice,
		Amount:    calc.Round2(unitPrice.Mul(payment.Quintals.Decimal)),
		Quotes:    quotes,
	}, nil
}
