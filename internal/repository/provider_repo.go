package repository

import (
	"context"
	"strings"

	"claims-payment-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// FindByCodeAndName matches both columns exactly and returns at most two rows.
func (r *ProviderRepository) FindByCodeAndName(ctx context.Context, hcpcode, name string) ([]models.ProviderRecord, error) {
	var providers []models.ProviderRecord
	err := r.db.WithContext(ctx).
		Where("hcpcode = ? AND name = ?", hcpcode, name).
		Limit(2).
		Find(&providers).Error
	return providers, err
}

func (r *ProviderRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProviderRecord{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

func (r *ProviderRepository) Create(ctx context.Context, p *models.ProviderRecord) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

// List filters by a case-insensitive name match when search is set.
func (r *ProviderRepository) List(ctx context.Context, search string) ([]models.ProviderRecord, error) {
	var providers []models.ProviderRecord
	query := r.db.WithContext(ctx).Order("name ASC")
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	err := query.Find(&providers).Error
	return providers, err
}

func (r *ProviderRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.ProviderRecord{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
