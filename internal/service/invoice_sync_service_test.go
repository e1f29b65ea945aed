package service

import (
	"context"
	"testing"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInvoiceSyncService_MirrorDisabled(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceSyncService(repository.NewOrderRepository(db), nil, zap.NewNop())

	_, _, err := svc.SyncPending(context.Background())
	assert.ErrorIs(t, err, ErrMirrorDisabled)
}

func TestInvoiceStatusFromMirror(t *testing.T) {
	tests := []struct {
		mirror string
		want   domain.InvoiceStatus
	}{
		{"ISSUED", domain.InvoiceProcessed},
		{"authorized", domain.InvoiceProcessed},
		{" processed ", domain.InvoiceProcessed},
		{"ERROR", domain.InvoiceError},
		{"rejected", domain.InvoiceError},
		{"QUEUED", domain.InvoicePending},
		{"", domain.InvoicePending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, invoiceStatusFromMirror(tt.mirror), "mirror status %q", tt.mirror)
	}
}
