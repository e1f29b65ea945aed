package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"gorm.io/gorm"
)

type DispatchRepository struct {
	db *gorm.DB
}

func NewDispatchRepository(db *gorm.DB) *DispatchRepository {
	return &DispatchRepository{db: db}
}

func (r *DispatchRepository) Create(ctx context.Context, dispatch *domain.Dispatch) error {
	return r.db.WithContext(ctx).Create(dispatch).Error
}

func (r *DispatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dispatch, error) {
	var dispatch domain.Dispatch
	err := r.db.WithContext(ctx).Preload("Items").First(&dispatch, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &dispatch, nil
}

func (r *DispatchRepository) Update(ctx context.Context, dispatch *domain.Dispatch) error {
	return r.db.WithContext(ctx).Save(dispatch).Error
}

func (r *DispatchRepository) UpdateItem(ctx context.Context, item *domain.DispatchItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *DispatchRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Dispatch, error) {
	var dispatches []domain.Dispatch
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("reported_at DESC").
		Find(&dispatches).Error
	return dispatches, err
}

// ListIncoming returns dispatches headed to a branch, optionally filtered by
// reception status
func (r *DispatchRepository) ListIncoming(ctx context.Context, destination string, status domain.ReceptionStatus) ([]domain.Dispatch, error) {
	var dispatches []domain.Dispatch
	query := r.db.WithContext(ctx).Preload("Items").
		Where("destination = ?", destination)
	if status != "" {
		query = query.Where("reception_status = ?", status)
	}
	err := query.Order("reported_at DESC").Find(&dispatches).Error
	return dispatches, err
}
