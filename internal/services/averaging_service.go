package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/calc"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
)

// AveragingService computes the market price average for an installment
type AveragingService struct {
	prices         repository.PriceQuoteRepository
	lookbackMonths int
}

// NewAveragingService creates an averaging service. lookbackMonths bounds how
// many months before the reference month the last-N policies may reach when
// the reference month is short of quotes.
func NewAveragingService(prices repository.PriceQuoteRepository, lookbackMonths int) *AveragingService {
	return &AveragingService{prices: prices, lookbackMonths: lookbackMonths}
}

// Average returns the mean price of the quotes selected by the payment's
// policy, rounded to two decimals, and the quotes used.
func (s *AveragingService) Average(ctx context.Context, payment *models.Payment) (decimal.Decimal, []models.PriceQuote, error) {
	quotes, err := s.SelectQuotes(ctx, payment.Policy(), payment.PriceSource, payment.DueDate)
	if err != nil {
		return decimal.Zero, nil, err
	}

	values := make([]decimal.Decimal, len(quotes))
	for i, q := range quotes {
		values[i] = q.PricePerTon
	}
	avg, ok := calc.Mean(values)
	if !ok {
		return decimal.Zero, nil, fmt.Errorf("%w: payment %d, source %s, policy %s", ErrNoPriceData, payment.ID, payment.PriceSource, payment.Policy())
	}
	return avg, quotes, nil
}

// SelectQuotes returns the quotes of source that the policy averages for an
// installment due on due
func (s *AveragingService) SelectQuotes(ctx context.Context, policy, source string, due time.Time) ([]models.PriceQuote, error) {
	due = calc.DateOnly(due)

	switch policy {
	case models.AveragingLast5BusinessDays:
		return s.lastN(ctx, source, due, 5)
	case models.AveragingLast10BusinessDays:
		return s.lastN(ctx, source, due, 10)
	case models.AveragingDays10To15:
		from := calc.MonthStart(due).AddDate(0, 0, 9)
		return s.find(ctx, repository.QuoteFilter{Source: source, From: from, To: from.AddDate(0, 0, 6)})
	case models.AveragingPriorMonthAll:
		return s.find(ctx, repository.QuoteFilter{Source: source, From: calc.PreviousMonth(due), To: calc.MonthStart(due)})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPolicy, policy)
	}
}

// lastN takes the n most recent quotes of the month before due and tops up
// from earlier months, newest first, when that month has fewer than n.
func (s *AveragingService) lastN(ctx context.Context, source string, due time.Time, n int) ([]models.PriceQuote, error) {
	refStart := calc.PreviousMonth(due)
	quotes, err := s.find(ctx, repository.QuoteFilter{
		Source:      source,
		From:        refStart,
		To:          calc.MonthStart(due),
		NewestFirst: true,
		Limit:       n,
	})
	if err != nil || len(quotes) >= n || s.lookbackMonths <= 0 {
		return quotes, err
	}

	older, err := s.find(ctx, repository.QuoteFilter{
		Source:      source,
		From:        calc.AddMonths(refStart, -s.lookbackMonths),
		To:          refStart,
		NewestFirst: true,
		Limit:       n - len(quotes),
	})
	if err != nil {
		return nil, err
	}
	return append(quotes, older...), nil
}

func (s *AveragingService) find(ctx context.Context, filter repository.QuoteFilter) ([]models.PriceQuote, error) {
	quotes, err := s.prices.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load price quotes: %w", err)
	}
	return quotes, nil
}
