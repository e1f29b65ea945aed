package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/horno-sanmarino/bakery-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExportService_Orders(t *testing.T) {
	db := setupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(repository.NewOrderRepository(db), store, time.UTC, zap.NewNop())
	ctx := context.Background()

	delivery := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	createTestOrder(t, db, "María Pérez", delivery, domain.StagePending,
		map[string]int{"Cake de Chocolate": 2})

	from := delivery.AddDate(0, 0, -1)
	to := delivery.AddDate(0, 0, 1)
	result, err := svc.Orders(ctx, &from, &to)
	require.NoError(t, err)

	assert.Contains(t, result.Filename, "pedidos_")
	assert.Equal(t, exportContentType, result.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(result.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Pedidos")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, exportHeaders, rows[0][:len(exportHeaders)])
	assert.Equal(t, "María Pérez", rows[1][2])
	assert.Contains(t, rows[1][4], "2x Cake de Chocolate")
}

func TestExportService_Orders_EmptyWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewExportService(repository.NewOrderRepository(db), nil, time.UTC, zap.NewNop())

	result, err := svc.Orders(context.Background(), nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(result.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Pedidos")
	require.NoError(t, err)
	require.Len(t, rows, 1, "only the header row")
}
