package repository

import (
	"context"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"gorm.io/gorm"
)

type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

func (r *MovementRepository) Create(ctx context.Context, movement *domain.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// CreateTx records a movement within an existing transaction so stock
// adjustment and the movement row commit together
func (r *MovementRepository) CreateTx(ctx context.Context, tx *gorm.DB, movement *domain.StockMovement) error {
	return tx.WithContext(ctx).Create(movement).Error
}

func (r *MovementRepository) List(ctx context.Context, page, pageSize int, movementType domain.MovementType, from, to *time.Time) ([]domain.StockMovement, int64, error) {
	var movements []domain.StockMovement
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.StockMovement{})

	if movementType != "" {
		query = query.Where("type = ?", movementType)
	}
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date < ?", *to)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("RawMaterial").Preload("Provider").
		Offset(offset).Limit(pageSize).
		Order("date DESC").
		Find(&movements).Error

	return movements, total, err
}
