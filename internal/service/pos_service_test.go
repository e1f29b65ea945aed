package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestPOSService(t *testing.T, db *gorm.DB) *POSService {
	t.Helper()
	return NewPOSService(
		repository.NewDispatchRepository(db),
		repository.NewOrderRepository(db),
		zap.NewNop(),
	)
}

func seedDispatch(t *testing.T, db *gorm.DB, destination string, items map[string]int) *domain.Dispatch {
	t.Helper()

	order := createTestOrder(t, db, "Cliente Sucursal", time.Now().Add(24*time.Hour), domain.StageFinished,
		map[string]int{"Cake": 1})

	dispatch := &domain.Dispatch{
		OrderID:         order.ID,
		Destination:     destination,
		ReportedBy:      "Producción",
		ReportedAt:      time.Now().UTC(),
		ReceptionStatus: domain.ReceptionPending,
	}
	for name, qty := range items {
		dispatch.Items = append(dispatch.Items, domain.DispatchItem{
			ProductName:  name,
			QuantitySent: qty,
			ItemStatus:   domain.DispatchItemOK,
		})
	}
	require.NoError(t, db.Create(dispatch).Error)
	return dispatch
}

func TestPOSService_ListIncoming(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPOSService(t, db)
	ctx := context.Background()

	seedDispatch(t, db, domain.BranchSanMarino, map[string]int{"Cake": 2})
	seedDispatch(t, db, domain.BranchMallDelSol, map[string]int{"Panetton": 1})

	dtos, err := svc.ListIncoming(ctx, domain.BranchSanMarino, "")
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, domain.BranchSanMarino, dtos[0].Destination)
	assert.Equal(t, "Cliente Sucursal", dtos[0].CustomerName)
	require.Len(t, dtos[0].Items, 1)
	assert.Equal(t, 2, dtos[0].Items[0].QuantitySent)
}

func TestPOSService_ListIncoming_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPOSService(t, db)
	ctx := context.Background()

	_, err := svc.ListIncoming(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ListIncoming(ctx, domain.BranchSanMarino, "SHIPPED")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPOSService_ConfirmReception_AllOK(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPOSService(t, db)
	ctx := context.Background()

	dispatch := seedDispatch(t, db, domain.BranchSanMarino, map[string]int{"Cake": 2, "Suspiros": 6})

	dto, err := svc.ConfirmReception(ctx, dispatch.ID, &domain.ConfirmReceptionRequest{
		ReceivedBy: "Cajera Turno 1",
		Items: []domain.ReceptionItemInput{
			{ProductName: "Cake", QuantityReceived: 2, ItemStatus: string(domain.DispatchItemOK)},
			{ProductName: "Suspiros", QuantityReceived: 6, ItemStatus: string(domain.DispatchItemOK)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.ReceptionReceived), dto.ReceptionStatus)
	assert.Equal(t, "Cajera Turno 1", dto.ReceivedBy)
	require.NotNil(t, dto.ReceivedAt)
}

func TestPOSService_ConfirmReception_ShortOrDamagedFlagsProblem(t *testing.T) {
	ctx := context.Background()

	t.Run("short count", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestPOSService(t, db)
		dispatch := seedDispatch(t, db, domain.BranchSanMarino, map[string]int{"Cake": 2})

		dto, err := svc.ConfirmReception(ctx, dispatch.ID, &domain.ConfirmReceptionRequest{
			ReceivedBy: "Cajera",
			Items: []domain.ReceptionItemInput{
				{ProductName: "Cake", QuantityReceived: 1, ItemStatus: string(domain.DispatchItemOK)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ReceptionProblem), dto.ReceptionStatus)
	})

	t.Run("damaged item", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestPOSService(t, db)
		dispatch := seedDispatch(t, db, domain.BranchSanMarino, map[string]int{"Cake": 2})

		dto, err := svc.ConfirmReception(ctx, dispatch.ID, &domain.ConfirmReceptionRequest{
			ReceivedBy: "Cajera",
			Items: []domain.ReceptionItemInput{
				{ProductName: "Cake", QuantityReceived: 2, ItemStatus: string(domain.DispatchItemDamaged)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ReceptionProblem), dto.ReceptionStatus)
		require.Len(t, dto.Items, 1)
		assert.Equal(t, string(domain.DispatchItemDamaged), dto.Items[0].ItemStatus)
	})
}

func TestPOSService_ConfirmReception_AlreadyReceived(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPOSService(t, db)
	ctx := context.Background()

	dispatch := seedDispatch(t, db, domain.BranchSanMarino, map[string]int{"Cake": 1})

	req := &domain.ConfirmReceptionRequest{
		ReceivedBy: "Cajera",
		Items: []domain.ReceptionItemInput{
			{ProductName: "Cake", QuantityReceived: 1, ItemStatus: string(domain.DispatchItemOK)},
		},
	}
	_, err := svc.ConfirmReception(ctx, dispatch.ID, req)
	require.NoError(t, err)

	_, err = svc.ConfirmReception(ctx, dispatch.ID, req)
	assert.ErrorIs(t, err, ErrAlreadyReceived)
}

func TestPOSService_ConfirmReception_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPOSService(t, db)

	_, err := svc.ConfirmReception(context.Background(), uuid.New(), &domain.ConfirmReceptionRequest{
		ReceivedBy: "Cajera",
		Items: []domain.ReceptionItemInput{
			{ProductName: "Cake", QuantityReceived: 1, ItemStatus: string(domain.DispatchItemOK)},
		},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
