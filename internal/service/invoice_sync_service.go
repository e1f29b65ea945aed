package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/erp"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"go.uber.org/zap"
)

// invoiceSyncBatchSize caps how many pending invoices one sync pass looks up
const invoiceSyncBatchSize = 200

// InvoiceSyncService reconciles pending electronic invoices against the ERP
// mirror. Orders are created with invoice status PENDING; the ERP issues the
// actual invoice out of band and this service pulls the outcome back.
type InvoiceSyncService struct {
	orderRepo *repository.OrderRepository
	erpClient *erp.Client
	logger    *zap.Logger
}

func NewInvoiceSyncService(orderRepo *repository.OrderRepository, erpClient *erp.Client, logger *zap.Logger) *InvoiceSyncService {
	return &InvoiceSyncService{
		orderRepo: orderRepo,
		erpClient: erpClient,
		logger:    logger,
	}
}

// SyncPending looks up every order awaiting invoice confirmation in the ERP
// mirror and updates its invoice status. Orders the mirror has not issued yet
// are counted as missing and retried on the next pass.
func (s *InvoiceSyncService) SyncPending(ctx context.Context) (updated int, missing int, err error) {
	if !s.erpClient.IsEnabled() {
		return 0, 0, ErrMirrorDisabled
	}

	orders, err := s.orderRepo.ListPendingInvoices(ctx, invoiceSyncBatchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list pending invoices: %w", err)
	}
	if len(orders) == 0 {
		return 0, 0, nil
	}

	references := make([]string, 0, len(orders))
	for _, o := range orders {
		references = append(references, o.ID.String())
	}

	records, err := s.erpClient.GetInvoiceStatuses(ctx, references)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query invoice mirror: %w", err)
	}

	for _, order := range orders {
		record, ok := records[order.ID.String()]
		if !ok {
			missing++
			continue
		}

		status := invoiceStatusFromMirror(record.Status)
		if status == domain.InvoicePending {
			missing++
			continue
		}

		if err := s.orderRepo.UpdateInvoiceStatus(ctx, order.ID, status); err != nil {
			s.logger.Error("Failed to update invoice status",
				zap.String("order_id", order.ID.String()),
				zap.String("status", string(status)),
				zap.Error(err),
			)
			continue
		}
		updated++
	}

	return updated, missing, nil
}

// invoiceStatusFromMirror maps the ERP's invoice state onto ours. Anything
// unrecognized stays pending so the next pass retries it.
func invoiceStatusFromMirror(mirrorStatus string) domain.InvoiceStatus {
	switch strings.ToUpper(strings.TrimSpace(mirrorStatus)) {
	case "ISSUED", "AUTHORIZED", "PROCESSED":
		return domain.InvoiceProcessed
	case "ERROR", "REJECTED":
		return domain.InvoiceError
	default:
		return domain.InvoicePending
	}
}
