package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("registro no encontrado")

// ErrDuplicate is returned when a unique constraint rejects an insert
var ErrDuplicate = errors.New("registro duplicado")

// Repositories holds all repository instances
type Repositories struct {
	Lease     LeaseRepository
	Landlord  LandlordRepository
	Payment   PaymentRepository
	Price     PriceQuoteRepository
	Invoice   InvoiceRepository
	Retention RetentionRepository
	Setting   SettingRepository
	Audit     AuditRepository
	Tx        TxManager
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Lease:     NewLeaseRepository(db),
		Landlord:  NewLandlordRepository(db),
		Payment:   NewPaymentRepository(db),
		Price:     NewPriceQuoteRepository(db),
		Invoice:   NewInvoiceRepository(db),
		Retention: NewRetentionRepository(db),
		Setting:   NewSettingRepository(db),
		Audit:     NewAuditRepository(db),
		Tx:        NewTxManager(db),
	}
}

// TxManager runs fn against repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(tx *Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager for db
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// Offset returns the row offset for the current page
func (q *ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// translate maps driver errors onto repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
