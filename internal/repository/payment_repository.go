package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Payment, error)
	FindByLease(ctx context.Context, leaseID uint) ([]models.Payment, error)
	CountByLease(ctx context.Context, leaseID uint) (int64, error)
	CreateBatch(ctx context.Context, payments []models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	AttachQuotes(ctx context.Context, paymentID uint, quotes []models.PriceQuote) error
	FindQuotes(ctx context.Context, paymentID uint) ([]models.PriceQuote, error)
	FindPendingDueBefore(ctx context.Context, date time.Time) ([]models.Payment, error)
	FindUnpricedDueBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error)
	List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error)
	SummarizeByTenant(ctx context.Context, from, to time.Time, statuses []string) ([]TenantDueSummary, error)
}

// TenantDueSummary totals the installments one tenant owes in a period
type TenantDueSummary struct {
	TenantID uint            `json:"tenant_id"`
	Payments int64           `json:"payments"`
	Quintals decimal.Decimal `json:"quintals"`
	Amount   decimal.Decimal `json:"amount"`
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Participation").
		First(&payment, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

// FindByIDForUpdate loads the payment and locks its row until the surrounding
// transaction ends. Outside a transaction the lock is released immediately.
func (r *paymentRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (r *paymentRepository) FindByLease(ctx context.Context, leaseID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		Order("due_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) CountByLease(ctx context.Context, leaseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).Where("lease_id = ?", leaseID).Count(&count).Error
	return count, err
}

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&payments, 100).Error)
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
}

// AttachQuotes records the quotes that produced the payment's average price
func (r *paymentRepository) AttachQuotes(ctx context.Context, paymentID uint, quotes []models.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Payment{ID: paymentID}).
		Association("Quotes").
		Append(quotes)
}

func (r *paymentRepository) FindQuotes(ctx context.Context, paymentID uint) ([]models.PriceQuote, error) {
	var quotes []models.PriceQuote
	err := r.db.WithContext(ctx).
		Joins("JOIN payment_quotes ON payment_quotes.price_quote_id = price_quotes.id").
		Where("payment_quotes.payment_id = ?", paymentID).
		Order("price_quotes.date ASC").
		Find(&quotes).Error
	return quotes, err
}

// FindPendingDueBefore returns pending payments due strictly before date
func (r *paymentRepository) FindPendingDueBefore(ctx context.Context, date time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", models.PaymentStatusPending, date).
		Order("due_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

// FindUnpricedDueBetween returns pending quantity-based payments with no price
// yet, due in [from, to)
func (r *paymentRepository) FindUnpricedDueBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PaymentStatusPending).
		Where("due_date >= ? AND due_date < ?", from, to).
		Where("quintals IS NOT NULL AND unit_price IS NULL AND amount IS NULL").
		Order("due_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if leaseID := query.Filters["lease_id"]; leaseID != "" {
		db = db.Where("payments.lease_id = ?", leaseID)
	}
	if status := query.Filters["status"]; status != "" {
		db = db.Where("payments.status = ?", status)
	}
	if landlordID := query.Filters["landlord_id"]; landlordID != "" {
		owned := r.db.Model(&models.Participation{}).Select("id").Where("landlord_id = ?", landlordID)
		db = db.Where("payments.participation_id IN (?)", owned)
	}
	// due_from is inclusive, due_before exclusive; both are YYYY-MM-DD
	if from := query.Filters["due_from"]; from != "" {
		db = db.Where("payments.due_date >= ?", from)
	}
	if before := query.Filters["due_before"]; before != "" {
		db = db.Where("payments.due_date < ?", before)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "payments.due_date ASC"
	if query.SortBy == "due_date" && query.SortDir == "desc" {
		order = "payments.due_date DESC"
	}
	db = db.Order(order).Order("payments.id ASC")

	if query.PerPage > 0 {
		db = db.Offset(query.Offset()).Limit(query.PerPage)
	}

	err := db.Preload("Participation").Find(&payments).Error
	return payments, total, err
}

// SummarizeByTenant groups the installments due in [from, to) with one of
// statuses by the tenant of their lease
func (r *paymentRepository) SummarizeByTenant(ctx context.Context, from, to time.Time, statuses []string) ([]TenantDueSummary, error) {
	var rows []TenantDueSummary
	err := r.db.WithContext(ctx).
		Table("payments").
		Select("leases.tenant_id AS tenant_id, COUNT(payments.id) AS payments, "+
			"COALESCE(SUM(payments.quintals), 0) AS quintals, COALESCE(SUM(payments.amount), 0) AS amount").
		Joins("JOIN leases ON leases.id = payments.lease_id").
		Where("payments.due_date >= ? AND payments.due_date < ?", from, to).
		Where("payments.status IN ?", statuses).
		Group("leases.tenant_id").
		Order("leases.tenant_id ASC").
		Scan(&rows).Error
	return rows, err
}
