package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestWarehouseService(t *testing.T, db *gorm.DB) *WarehouseService {
	t.Helper()
	return NewWarehouseService(
		db,
		repository.NewRawMaterialRepository(db),
		repository.NewMovementRepository(db),
		repository.NewProviderRepository(db),
		zap.NewNop(),
	)
}

func seedMaterial(t *testing.T, svc *WarehouseService, name string, qty, cost decimal.Decimal) *domain.RawMaterialDTO {
	t.Helper()
	dto, err := svc.CreateMaterial(context.Background(), &domain.CreateRawMaterialRequest{
		Name:     name,
		Unit:     "kg",
		Quantity: qty,
		UnitCost: cost,
	})
	require.NoError(t, err)
	return dto
}

func TestWarehouseService_RegisterMovement_InWeightedAverage(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWarehouseService(t, db)
	ctx := context.Background()

	material := seedMaterial(t, svc, "Harina", decimal.NewFromInt(10), decimal.NewFromInt(2))

	// 10kg @ 2.00 on hand + 10kg @ 4.00 incoming = 20kg @ 3.00
	dto, err := svc.RegisterMovement(ctx, &domain.CreateMovementRequest{
		Type:          string(domain.MovementIn),
		RawMaterialID: material.ID,
		Quantity:      decimal.NewFromInt(10),
		UnitCost:      decimal.NewFromInt(4),
		Responsible:   "Bodeguero",
	})
	require.NoError(t, err)

	assert.True(t, dto.RawMaterial.Quantity.Equal(decimal.NewFromInt(20)),
		"got quantity %s", dto.RawMaterial.Quantity)
	assert.True(t, dto.RawMaterial.UnitCost.Equal(decimal.NewFromInt(3)),
		"got unit cost %s", dto.RawMaterial.UnitCost)
	assert.True(t, dto.TotalValue.Equal(decimal.NewFromInt(40)),
		"got total %s", dto.TotalValue)

	stored, err := svc.GetMaterial(ctx, material.ID)
	require.NoError(t, err)
	assert.True(t, stored.UnitCost.Equal(decimal.NewFromInt(3)))
}

func TestWarehouseService_RegisterMovement_InWithoutCostKeepsAverage(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWarehouseService(t, db)
	ctx := context.Background()

	material := seedMaterial(t, svc, "Azúcar", decimal.NewFromInt(5), decimal.NewFromFloat(1.50))

	dto, err := svc.RegisterMovement(ctx, &domain.CreateMovementRequest{
		Type:          string(domain.MovementIn),
		RawMaterialID: material.ID,
		Quantity:      decimal.NewFromInt(5),
		Responsible:   "Bodeguero",
	})
	require.NoError(t, err)

	assert.True(t, dto.UnitCost.Equal(decimal.NewFromFloat(1.50)))
	assert.True(t, dto.RawMaterial.Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, dto.RawMaterial.UnitCost.Equal(decimal.NewFromFloat(1.50)))
}

func TestWarehouseService_RegisterMovement_OutDecrementsAtCurrentCost(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWarehouseService(t, db)
	ctx := context.Background()

	material := seedMaterial(t, svc, "Mantequilla", decimal.NewFromInt(8), decimal.NewFromFloat(5.25))

	dto, err := svc.RegisterMovement(ctx, &domain.CreateMovementRequest{
		Type:          string(domain.MovementOut),
		RawMaterialID: material.ID,
		Quantity:      decimal.NewFromInt(3),
		UnitCost:      decimal.NewFromInt(99), // ignored for outgoing stock
		Responsible:   "Producción",
	})
	require.NoError(t, err)

	assert.True(t, dto.UnitCost.Equal(decimal.NewFromFloat(5.25)))
	assert.True(t, dto.TotalValue.Equal(decimal.NewFromFloat(15.75)))
	assert.True(t, dto.RawMaterial.Quantity.Equal(decimal.NewFromInt(5)))
}

func TestWarehouseService_RegisterMovement_InsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWarehouseService(t, db)
	ctx := context.Background()

	material := seedMaterial(t, svc, "Levadura", decimal.NewFromInt(2), decimal.NewFromInt(1))

	for _, movementType := range []domain.MovementType{domain.MovementOut, domain.MovementLoss} {
		_, err := svc.RegisterMovement(ctx, &domain.CreateMovementRequest{
			Type:          string(movementType),
			RawMaterialID: material.ID,
			Quantity:      decimal.NewFromInt(3),
			Responsible:   "Producción",
		})
		assert.ErrorIs(t, err, ErrInsufficientStock)
	}

	// failed movement must not touch stock
	stored, err := svc.GetMaterial(ctx, material.ID)
	require.NoError(t, err)
	assert.True(t, stored.Quantity.Equal(decimal.NewFromInt(2)))
}

func TestWarehouseService_RegisterMovement_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWarehouseService(t, db)
	ctx := context.Background()

	material := seedMaterial(t, svc, "Sal", decimal.NewFromInt(1), decimal.NewFromInt(1))

	_, err := svc.RegisterMovement(ctx, &domain.CreateMovementRequest{
		Type:          "TRANSFER",
		RawMaterialID: material.ID,
		Quantity:      decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RegisterMovement(ctx, &domain.CreateMovementRequest{
		Type:          string(domain.MovementIn),
		RawMaterialID: material.ID,
		Quantity:      decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RegisterMovement(ctx, &domain.CreateMovementRequest{
		Type:          string(domain.MovementIn),
		RawMaterialID: uuid.New(),
		Quantity:      decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWarehouseService_ListMovements_FiltersByType(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWarehouseService(t, db)
	ctx := context.Background()

	material := seedMaterial(t, svc, "Huevos", decimal.NewFromInt(100), decimal.NewFromFloat(0.15))

	for _, movementType := range []domain.MovementType{domain.MovementIn, domain.MovementOut, domain.MovementOut} {
		_, err := svc.RegisterMovement(ctx, &domain.CreateMovementRequest{
			Type:          string(movementType),
			RawMaterialID: material.ID,
			Quantity:      decimal.NewFromInt(10),
			Responsible:   "Bodeguero",
		})
		require.NoError(t, err)
	}

	resp, err := svc.ListMovements(ctx, 1, 50, domain.MovementOut, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Total)

	resp, err = svc.ListMovements(ctx, 1, 50, "", nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
}

func TestWarehouseService_CreateProvider_Conflict(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWarehouseService(t, db)
	ctx := context.Background()

	dto, err := svc.CreateProvider(ctx, &domain.CreateProviderRequest{Name: "Molinos del Ecuador"})
	require.NoError(t, err)
	assert.Equal(t, "Molinos del Ecuador", dto.Name)

	_, err = svc.CreateProvider(ctx, &domain.CreateProviderRequest{Name: "Molinos del Ecuador"})
	assert.ErrorIs(t, err, ErrConflict)

	providers, err := svc.ListProviders(ctx)
	require.NoError(t, err)
	assert.Len(t, providers, 1)
}

func TestWarehouseService_ListMaterials_Search(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestWarehouseService(t, db)
	ctx := context.Background()

	seedMaterial(t, svc, "Harina de Trigo", decimal.NewFromInt(1), decimal.NewFromInt(1))
	seedMaterial(t, svc, "Harina de Maíz", decimal.NewFromInt(1), decimal.NewFromInt(1))
	seedMaterial(t, svc, "Azúcar", decimal.NewFromInt(1), decimal.NewFromInt(1))

	materials, err := svc.ListMaterials(ctx, "harina")
	require.NoError(t, err)
	assert.Len(t, materials, 2)

	materials, err = svc.ListMaterials(ctx, "")
	require.NoError(t, err)
	assert.Len(t, materials, 3)
}
