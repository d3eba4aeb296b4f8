package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/calc"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

// PriceService appends to and reads the price ledger. Ingestion clients
// post one quote per source and day.
type PriceService struct {
	repo repository.PriceQuoteRepository
}

func NewPriceService(repo repository.PriceQuoteRepository) *PriceService {
	return &PriceService{repo: repo}
}

// Record stores a quote. A second quote for the same day and source fails with ErrDuplicate.
func (s *PriceService) Record(ctx context.Context, date time.Time, source string, pricePerTon decimal.Decimal) (*models.PriceQuote, error) {
	if !models.IsValidPriceSource(source) {
		return nil, fmt.Errorf("%w: unknown price source %q", ErrInvalidInput, source)
	}
	if !pricePerTon.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}

	quote := &models.PriceQuote{
		Date:        calc.DateOnly(date),
		Source:      source,
		PricePerTon: calc.Round2(pricePerTon),
	}
	if err := s.repo.Create(ctx, quote); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s quote for %s", ErrDuplicate, source, quote.Date.Format(models.DateLayout))
		}
		return nil, fmt.Errorf("failed to store quote: %w", err)
	}

	logger.Info("Price quote recorded", "source", source, "date", quote.Date.Format(models.DateLayout), "price", quote.PricePerTon.String())
	return quote, nil
}

// List returns a page of the ledger, newest first
func (s *PriceService) List(ctx context.Context, query *repository.ListQuery) ([]models.PriceQuote, int64, error) {
	return s.repo.List(ctx, query)
}
