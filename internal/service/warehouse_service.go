package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/mapper"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WarehouseService manages raw-material stock. Movements and the resulting
// stock adjustment commit in one transaction.
type WarehouseService struct {
	db           *gorm.DB
	materialRepo *repository.RawMaterialRepository
	movementRepo *repository.MovementRepository
	providerRepo *repository.ProviderRepository
	logger       *zap.Logger
}

func NewWarehouseService(
	db *gorm.DB,
	materialRepo *repository.RawMaterialRepository,
	movementRepo *repository.MovementRepository,
	providerRepo *repository.ProviderRepository,
	logger *zap.Logger,
) *WarehouseService {
	return &WarehouseService{
		db:           db,
		materialRepo: materialRepo,
		movementRepo: movementRepo,
		providerRepo: providerRepo,
		logger:       logger,
	}
}

// RegisterMovement records a stock movement and adjusts the material's
// quantity. IN movements with a unit cost recompute the weighted average
// cost; OUT and LOSS movements fail when they would drive stock negative.
func (s *WarehouseService) RegisterMovement(ctx context.Context, req *domain.CreateMovementRequest) (*domain.MovementDTO, error) {
	movementType := domain.MovementType(req.Type)
	if !movementType.IsValid() {
		return nil, fmt.Errorf("%w: movement type %q", ErrInvalidInput, req.Type)
	}
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var movement *domain.StockMovement

	err := s.db.Transaction(func(tx *gorm.DB) error {
		material, err := s.materialRepo.GetByIDTx(ctx, tx, req.RawMaterialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get raw material: %w", err)
		}

		newQuantity := material.Quantity
		newUnitCost := material.UnitCost
		unitCost := req.UnitCost

		switch movementType {
		case domain.MovementIn:
			if unitCost.IsZero() {
				unitCost = material.UnitCost
			}
			total := newQuantity.Add(req.Quantity)
			if total.IsPositive() && !unitCost.IsZero() {
				currentValue := material.Quantity.Mul(material.UnitCost)
				incomingValue := req.Quantity.Mul(unitCost)
				newUnitCost = currentValue.Add(incomingValue).Div(total).Round(4)
			}
			newQuantity = total
		default:
			if req.Quantity.GreaterThan(material.Quantity) {
				return fmt.Errorf("%w: %s has %s, requested %s",
					ErrInsufficientStock, material.Name, material.Quantity, req.Quantity)
			}
			unitCost = material.UnitCost
			newQuantity = material.Quantity.Sub(req.Quantity)
		}

		movement = &domain.StockMovement{
			Type:          movementType,
			RawMaterialID: material.ID,
			Quantity:      req.Quantity,
			UnitCost:      unitCost,
			TotalValue:    req.Quantity.Mul(unitCost).Round(2),
			Date:          date,
			Responsible:   req.Responsible,
			Entity:        req.Entity,
			Reason:        req.Reason,
			Observation:   req.Observation,
			ProviderID:    req.ProviderID,
		}

		if err := s.movementRepo.CreateTx(ctx, tx, movement); err != nil {
			return fmt.Errorf("failed to record movement: %w", err)
		}
		if err := s.materialRepo.SetQuantity(ctx, tx, material.ID, newQuantity, newUnitCost); err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}

		movement.RawMaterial = material
		movement.RawMaterial.Quantity = newQuantity
		movement.RawMaterial.UnitCost = newUnitCost
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock movement registered",
		zap.String("type", req.Type),
		zap.String("raw_material_id", req.RawMaterialID.String()),
		zap.String("quantity", req.Quantity.String()),
	)

	dto := mapper.ToMovementDTO(movement)
	return &dto, nil
}

func (s *WarehouseService) ListMovements(ctx context.Context, page, pageSize int, movementType domain.MovementType, from, to *time.Time) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	movements, total, err := s.movementRepo.List(ctx, page, pageSize, movementType, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	dtos := make([]domain.MovementDTO, 0, len(movements))
	for i := range movements {
		dtos = append(dtos, mapper.ToMovementDTO(&movements[i]))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *WarehouseService) CreateMaterial(ctx context.Context, req *domain.CreateRawMaterialRequest) (*domain.RawMaterialDTO, error) {
	material := &domain.RawMaterial{
		Name:       req.Name,
		Unit:       req.Unit,
		Quantity:   req.Quantity,
		UnitCost:   req.UnitCost,
		ProviderID: req.ProviderID,
	}
	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create raw material: %w", err)
	}
	dto := mapper.ToRawMaterialDTO(material)
	return &dto, nil
}

func (s *WarehouseService) ListMaterials(ctx context.Context, search string) ([]domain.RawMaterialDTO, error) {
	materials, err := s.materialRepo.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw materials: %w", err)
	}
	dtos := make([]domain.RawMaterialDTO, 0, len(materials))
	for i := range materials {
		dtos = append(dtos, mapper.ToRawMaterialDTO(&materials[i]))
	}
	return dtos, nil
}

func (s *WarehouseService) CreateProvider(ctx context.Context, req *domain.CreateProviderRequest) (*domain.ProviderDTO, error) {
	if _, err := s.providerRepo.GetByName(ctx, req.Name); err == nil {
		return nil, ErrConflict
	}

	provider := &domain.Provider{Name: req.Name}
	if err := s.providerRepo.Create(ctx, provider); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	dto := mapper.ToProviderDTO(provider)
	return &dto, nil
}

func (s *WarehouseService) ListProviders(ctx context.Context) ([]domain.ProviderDTO, error) {
	providers, err := s.providerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	dtos := make([]domain.ProviderDTO, 0, len(providers))
	for i := range providers {
		dtos = append(dtos, mapper.ToProviderDTO(&providers[i]))
	}
	return dtos, nil
}

func (s *WarehouseService) GetMaterial(ctx context.Context, id uuid.UUID) (*domain.RawMaterialDTO, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get raw material: %w", err)
	}
	dto := mapper.ToRawMaterialDTO(material)
	return &dto, nil
}
