package repository

import (
	"context"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"gorm.io/gorm"
)

// LandlordRepository defines the interface for landlord lookups
type LandlordRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Landlord, error)
}

type landlordRepository struct {
	db *gorm.DB
}

// NewLandlordRepository creates a new landlord repository
func NewLandlordRepository(db *gorm.DB) LandlordRepository {
	return &landlordRepository{db: db}
}

func (r *landlordRepository) FindByID(ctx context.Context, id uint) (*models.Landlord, error) {
	var landlord models.Landlord
	if err := r.db.WithContext(ctx).First(&landlord, id).Error; err != nil {
		return nil, translate(err)
	}
	return &landlord, nil
}
