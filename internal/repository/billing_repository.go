package repository

import (
	"context"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"gorm.io/gorm"
)

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByPayment(ctx context.Context, paymentID uint) (*models.Invoice, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return translate(r.db.WithContext(ctx).Omit("Retention").Create(invoice).Error)
}

func (r *invoiceRepository) FindByPayment(ctx context.Context, paymentID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Retention").
		Where("payment_id = ?", paymentID).
		First(&invoice).Error
	if err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

// RetentionRepository defines the interface for withholding records
type RetentionRepository interface {
	Create(ctx context.Context, retention *models.Retention) error
	AssignInvoice(ctx context.Context, retentionID, invoiceID uint) error
}

type retentionRepository struct {
	db *gorm.DB
}

// NewRetentionRepository creates a new retention repository
func NewRetentionRepository(db *gorm.DB) RetentionRepository {
	return &retentionRepository{db: db}
}

func (r *retentionRepository) Create(ctx context.Context, retention *models.Retention) error {
	return r.db.WithContext(ctx).Create(retention).Error
}

func (r *retentionRepository) AssignInvoice(ctx context.Context, retentionID, invoiceID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Retention{}).
		Where("id = ?", retentionID).
		Update("invoice_id", invoiceID).Error
}
