package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RawMaterialRepository struct {
	db *gorm.DB
}

func NewRawMaterialRepository(db *gorm.DB) *RawMaterialRepository {
	return &RawMaterialRepository{db: db}
}

func (r *RawMaterialRepository) Create(ctx context.Context, material *domain.RawMaterial) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *RawMaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RawMaterial, error) {
	var material domain.RawMaterial
	err := r.db.WithContext(ctx).Preload("Provider").First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// GetByIDTx reads the stock row within the given transaction so the stock
// check and the movement insert see the same state
func (r *RawMaterialRepository) GetByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.RawMaterial, error) {
	var material domain.RawMaterial
	err := tx.WithContext(ctx).First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *RawMaterialRepository) Update(ctx context.Context, material *domain.RawMaterial) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *RawMaterialRepository) List(ctx context.Context, search string) ([]domain.RawMaterial, error) {
	var materials []domain.RawMaterial
	query := r.db.WithContext(ctx).Preload("Provider")
	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchPattern)
	}
	err := query.Order("name ASC").Find(&materials).Error
	return materials, err
}

// SetQuantity updates a material's stock level and weighted unit cost within
// the given transaction
func (r *RawMaterialRepository) SetQuantity(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity, unitCost decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&domain.RawMaterial{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":  quantity,
			"unit_cost": unitCost,
		}).Error
}

func (r *RawMaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.RawMaterial{}, "id = ?", id).Error
}
