package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
)

// ConfigReader reads engine tunables by key
type ConfigReader interface {
	GetConfig(ctx context.Context, key string) (string, bool, error)
}

// SettingService manages the key/value settings table
type SettingService struct {
	repo repository.SettingRepository
}

func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetConfig returns the value for key and whether it exists
func (s *SettingService) GetConfig(ctx context.Context, key string) (string, bool, error) {
	setting, err := s.repo.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

// Get returns the stored setting
func (s *SettingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	}
	return setting, err
}

// Set stores value under key. Known numeric keys are validated first.
func (s *SettingService) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidInput)
	}
	if key == models.SettingMinimumTaxableBase {
		amount, err := decimal.NewFromString(value)
		if err != nil || amount.IsNegative() {
			return fmt.Errorf("%w: %s must be a non-negative amount", ErrInvalidSetting, key)
		}
	}
	return s.repo.Set(ctx, key, value)
}

// List returns every setting
func (s *SettingService) List(ctx context.Context) ([]models.Setting, error) {
	return s.repo.List(ctx)
}

// readDecimal reads a required decimal setting through reader
func readDecimal(ctx context.Context, reader ConfigReader, key string) (decimal.Decimal, error) {
	raw, ok, err := reader.GetConfig(ctx, key)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, key, raw)
	}
	return value, nil
}
