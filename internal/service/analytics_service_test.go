package service

import (
	"context"
	"testing"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedSale(t *testing.T, db *gorm.DB, responsible string, orderDate time.Time, total float64, stage domain.ProductionStage) {
	t.Helper()
	order := &domain.Order{
		CustomerName:    "Cliente",
		OrderDate:       orderDate,
		DeliveryDate:    orderDate.Add(48 * time.Hour),
		DeliveryType:    domain.DeliveryTypeRetiro,
		Responsible:     responsible,
		TotalValue:      decimal.NewFromFloat(total),
		ProductionStage: stage,
		InvoiceStatus:   domain.InvoicePending,
		Products:        []domain.OrderProduct{{Name: "Cake", Quantity: 1}},
	}
	require.NoError(t, db.Create(order).Error)
}

func TestAnalyticsService_SalesByResponsible(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(repository.NewOrderRepository(db), nil, zap.NewNop())
	ctx := context.Background()

	day := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	seedSale(t, db, "Ana", day, 100, domain.StagePending)
	seedSale(t, db, "Ana", day.Add(time.Hour), 50, domain.StageFinished)
	seedSale(t, db, "Luis", day, 80, domain.StagePending)
	seedSale(t, db, "Luis", day, 999, domain.StageVoid)          // void orders never count
	seedSale(t, db, "Ana", day.AddDate(0, 0, 10), 40, domain.StagePending) // outside range

	resp, err := svc.SalesByResponsible(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)

	require.Len(t, resp.Stats, 2)
	assert.Equal(t, "Ana", resp.Stats[0].Responsible)
	assert.True(t, resp.Stats[0].TotalSales.Equal(decimal.NewFromInt(150)),
		"got %s", resp.Stats[0].TotalSales)
	assert.Equal(t, 2, resp.Stats[0].Count)
	assert.Equal(t, "Luis", resp.Stats[1].Responsible)
	assert.True(t, resp.Stats[1].TotalSales.Equal(decimal.NewFromInt(80)))
}

func TestAnalyticsService_SalesByResponsible_EmptyRange(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(repository.NewOrderRepository(db), nil, zap.NewNop())

	now := time.Now()
	_, err := svc.SalesByResponsible(context.Background(), now, now)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
