package repository

import (
	"context"
	"time"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaseRepository defines the interface for lease data access
type LeaseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Lease, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Lease, error)
	FindByIDWithParticipations(ctx context.Context, id uint) (*models.Lease, error)
	FindParticipation(ctx context.Context, id uint) (*models.Participation, error)
	FindActiveEndedBefore(ctx context.Context, date time.Time) ([]models.Lease, error)
	Create(ctx context.Context, lease *models.Lease) error
	UpdateStatus(ctx context.Context, id uint, status string) error
}

type leaseRepository struct {
	db *gorm.DB
}

// NewLeaseRepository creates a new lease repository
func NewLeaseRepository(db *gorm.DB) LeaseRepository {
	return &leaseRepository{db: db}
}

func (r *leaseRepository) FindByID(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	if err := r.db.WithContext(ctx).First(&lease, id).Error; err != nil {
		return nil, translate(err)
	}
	return &lease, nil
}

// FindByIDForUpdate loads the lease and locks its row for the surrounding transaction
func (r *leaseRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&lease, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &lease, nil
}

func (r *leaseRepository) FindByIDWithParticipations(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	err := r.db.WithContext(ctx).
		Preload("Participations", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Participations.Landlord").
		First(&lease, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &lease, nil
}

func (r *leaseRepository) FindParticipation(ctx context.Context, id uint) (*models.Participation, error) {
	var participation models.Participation
	if err := r.db.WithContext(ctx).Preload("Landlord").First(&participation, id).Error; err != nil {
		return nil, translate(err)
	}
	return &participation, nil
}

// FindActiveEndedBefore returns active leases whose end date is before date
func (r *leaseRepository) FindActiveEndedBefore(ctx context.Context, date time.Time) ([]models.Lease, error) {
	var leases []models.Lease
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", models.LeaseStatusActive, date).
		Order("end_date ASC").
		Find(&leases).Error
	return leases, err
}

func (r *leaseRepository) Create(ctx context.Context, lease *models.Lease) error {
	return translate(r.db.WithContext(ctx).Create(lease).Error)
}

func (r *leaseRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Lease{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
