package production_test

import (
	"testing"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/production"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_SumsQuantitiesPerProduct(t *testing.T) {
	day := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	orders := []production.OrderRef{
		{ID: "1", ProductName: "Cake de Chocolate", Stage: domain.StagePending, Quantity: 2, Delivery: day},
		{ID: "2", ProductName: "Cake de Chocolate", Stage: domain.StagePending, Quantity: 3, Delivery: day.Add(2 * time.Hour)},
	}

	items := production.Aggregate(orders, false)

	require.Len(t, items, 1)
	assert.Equal(t, "Cake de Chocolate", items[0].ProductName)
	assert.Equal(t, 5, items[0].TotalQuantity)
	assert.Len(t, items[0].Orders, 2)
}

func TestAggregate_PrefersPendingOverQuantity(t *testing.T) {
	pending := 1
	orders := []production.OrderRef{
		{ID: "1", ProductName: "Panetton", Stage: domain.StageInProcess, Quantity: 10, Pending: &pending, Delivery: time.Now()},
	}

	items := production.Aggregate(orders, false)

	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].TotalQuantity)
}

func TestAggregate_ExcludesInactiveOrders(t *testing.T) {
	zero := 0
	day := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	orders := []production.OrderRef{
		{ID: "1", ProductName: "Turron", Stage: domain.StagePending, Quantity: 4, Delivery: day},
		{ID: "2", ProductName: "Turron", Stage: domain.StageFinished, Quantity: 6, Delivery: day},
		{ID: "3", ProductName: "Turron", Stage: domain.StageVoid, Quantity: 2, Delivery: day},
		{ID: "4", ProductName: "Turron", Stage: domain.StageInProcess, Quantity: 5, Pending: &zero, Delivery: day},
	}

	items := production.Aggregate(orders, false)

	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].TotalQuantity)
	assert.Len(t, items[0].Orders, 1)
}

func TestAggregate_DropsProductsWithNoActiveOrders(t *testing.T) {
	orders := []production.OrderRef{
		{ID: "1", ProductName: "Suspiros", Stage: domain.StageFinished, Quantity: 12, Delivery: time.Now()},
	}

	items := production.Aggregate(orders, false)
	assert.Empty(t, items)
}

func TestAggregate_IncludeInactiveKeepsEverything(t *testing.T) {
	day := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	orders := []production.OrderRef{
		{ID: "1", ProductName: "Suspiros", Stage: domain.StageFinished, Quantity: 12, Delivery: day},
		{ID: "2", ProductName: "Suspiros", Stage: domain.StageVoid, Quantity: 3, Delivery: day},
	}

	items := production.Aggregate(orders, true)

	require.Len(t, items, 1)
	assert.Equal(t, 15, items[0].TotalQuantity)
	assert.Len(t, items[0].Orders, 2)
}

func TestAggregate_UrgencyIsEarliestDelivery(t *testing.T) {
	early := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

	orders := []production.OrderRef{
		{ID: "1", ProductName: "Cake", Stage: domain.StagePending, Quantity: 1, Delivery: late},
		{ID: "2", ProductName: "Cake", Stage: domain.StagePending, Quantity: 1, Delivery: early},
	}

	items := production.Aggregate(orders, false)

	require.Len(t, items, 1)
	assert.True(t, items[0].Urgency.Equal(early))
}

func TestAggregate_SortsByUrgencyThenName(t *testing.T) {
	morning := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)

	orders := []production.OrderRef{
		{ID: "1", ProductName: "Zapallo", Stage: domain.StagePending, Quantity: 1, Delivery: morning},
		{ID: "2", ProductName: "Almendra", Stage: domain.StagePending, Quantity: 1, Delivery: morning},
		{ID: "3", ProductName: "Brownie", Stage: domain.StagePending, Quantity: 1, Delivery: evening},
	}

	items := production.Aggregate(orders, false)

	require.Len(t, items, 3)
	assert.Equal(t, "Almendra", items[0].ProductName)
	assert.Equal(t, "Zapallo", items[1].ProductName)
	assert.Equal(t, "Brownie", items[2].ProductName)
}

func TestAggregate_FallsBackToOtrosCategory(t *testing.T) {
	orders := []production.OrderRef{
		{ID: "1", ProductName: "Misterio", Stage: domain.StagePending, Quantity: 1, Delivery: time.Now()},
	}

	items := production.Aggregate(orders, false)

	require.Len(t, items, 1)
	assert.Equal(t, production.CategoryOther, items[0].Category)
}
