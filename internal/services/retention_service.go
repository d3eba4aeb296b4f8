package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/calc"
	"github.com/sjperalta/arrendamientos-api/internal/models"
)

// RetentionRate is the income tax withholding rate on the excess over the taxable base
var RetentionRate = decimal.RequireFromString("0.06")

// Withholding is the result of a retention computation
type Withholding struct {
	Floor  decimal.Decimal
	Base   decimal.Decimal
	Amount decimal.Decimal
}

// RetentionService computes the withholding applied when invoicing
// landlords that are not tax exempt
type RetentionService struct {
	config ConfigReader
}

func NewRetentionService(config ConfigReader) *RetentionService {
	return &RetentionService{config: config}
}

// ComputeForInvoice builds the retention for a priced payment. The returned
// record is not stored and has no invoice yet.
func (s *RetentionService) ComputeForInvoice(ctx context.Context, payment *models.Payment, landlordID uint, termMonths int, asOf time.Time) (*models.Retention, error) {
	floor, err := readDecimal(ctx, s.config, models.SettingMinimumTaxableBase)
	if err != nil {
		return nil, err
	}

	w := ComputeWithholding(payment.Amount.Decimal, floor, termMonths)
	return &models.Retention{
		PaymentID:    payment.ID,
		LandlordID:   landlordID,
		Date:         calc.DateOnly(asOf),
		TaxableFloor: w.Floor,
		TaxableBase:  w.Base,
		Amount:       w.Amount,
	}, nil
}

// ComputeWithholding applies max(0, (amount - floor × months) × 6%), rounded to two decimals
func ComputeWithholding(amount, floor decimal.Decimal, termMonths int) Withholding {
	base := floor.Mul(decimal.NewFromInt(int64(termMonths)))
	retained := calc.NonNegative(amount.Sub(base).Mul(RetentionRate))
	return Withholding{
		Floor:  floor,
		Base:   base,
		Amount: calc.Round2(retained),
	}
}
