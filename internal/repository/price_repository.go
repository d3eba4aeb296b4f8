package repository

import (
	"context"
	"time"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"gorm.io/gorm"
)

// QuoteFilter selects price quotes of one source dated in [From, To).
// A zero From or To leaves that side open.
type QuoteFilter struct {
	Source      string
	From        time.Time
	To          time.Time
	NewestFirst bool
	Limit       int
}

// PriceQuoteRepository defines the interface for the price ledger
type PriceQuoteRepository interface {
	Create(ctx context.Context, quote *models.PriceQuote) error
	Find(ctx context.Context, filter QuoteFilter) ([]models.PriceQuote, error)
	List(ctx context.Context, query *ListQuery) ([]models.PriceQuote, int64, error)
}

type priceQuoteRepository struct {
	db *gorm.DB
}

// NewPriceQuoteRepository creates a new price quote repository
func NewPriceQuoteRepository(db *gorm.DB) PriceQuoteRepository {
	return &priceQuoteRepository{db: db}
}

func (r *priceQuoteRepository) Create(ctx context.Context, quote *models.PriceQuote) error {
	return translate(r.db.WithContext(ctx).Create(quote).Error)
}

func (r *priceQuoteRepository) Find(ctx context.Context, filter QuoteFilter) ([]models.PriceQuote, error) {
	var quotes []models.PriceQuote
	db := r.db.WithContext(ctx).Where("source = ?", filter.Source)
	if !filter.From.IsZero() {
		db = db.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("date < ?", filter.To)
	}
	if filter.NewestFirst {
		db = db.Order("date DESC")
	} else {
		db = db.Order("date ASC")
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	err := db.Find(&quotes).Error
	return quotes, err
}

func (r *priceQuoteRepository) List(ctx context.Context, query *ListQuery) ([]models.PriceQuote, int64, error) {
	var quotes []models.PriceQuote
	var total int64

	db := r.db.WithContext(ctx).Model(&models.PriceQuote{})
	if source := query.Filters["source"]; source != "" {
		db = db.Where("source = ?", source)
	}
	if from := query.Filters["from"]; from != "" {
		db = db.Where("date >= ?", from)
	}
	if to := query.Filters["to"]; to != "" {
		db = db.Where("date <= ?", to)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortDir == "asc" {
		db = db.Order("date ASC")
	} else {
		db = db.Order("date DESC")
	}
	if query.PerPage > 0 {
		db = db.Offset(query.Offset()).Limit(query.PerPage)
	}

	err := db.Find(&quotes).Error
	return quotes, total, err
}
