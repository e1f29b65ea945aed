package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/database"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	return db
}

// createTestOrder seeds an order with one line item per (name, quantity) pair
func createTestOrder(t *testing.T, db *gorm.DB, customer string, delivery time.Time, stage domain.ProductionStage, products map[string]int) *domain.Order {
	t.Helper()

	order := &domain.Order{
		CustomerName:    customer,
		OrderDate:       delivery.Add(-48 * time.Hour),
		DeliveryDate:    delivery,
		DeliveryType:    domain.DeliveryTypeRetiro,
		ProductionStage: stage,
		InvoiceStatus:   domain.InvoicePending,
	}
	for name, qty := range products {
		order.Products = append(order.Products, domain.OrderProduct{
			Name:     name,
			Quantity: qty,
		})
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func reloadOrder(t *testing.T, db *gorm.DB, id interface{}) *domain.Order {
	t.Helper()
	var order domain.Order
	require.NoError(t, db.Preload("Products").First(&order, "id = ?", id).Error)
	return &order
}
