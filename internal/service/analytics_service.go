package service

import (
	"context"
	"fmt"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/erp"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"go.uber.org/zap"
)

// AnalyticsService computes sales reports from the order database, with
// optional reconciliation against what the ERP actually billed.
type AnalyticsService struct {
	orderRepo *repository.OrderRepository
	erpClient *erp.Client
	logger    *zap.Logger
}

func NewAnalyticsService(orderRepo *repository.OrderRepository, erpClient *erp.Client, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		orderRepo: orderRepo,
		erpClient: erpClient,
		logger:    logger,
	}
}

// SalesByResponsible sums order totals per responsible within [from, to).
// When the ERP mirror is available, rows whose billed total diverges from the
// board total are logged for reconciliation but the board figures win.
func (s *AnalyticsService) SalesByResponsible(ctx context.Context, from, to time.Time) (*domain.SalesByResponsibleResponse, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: empty date range", ErrInvalidInput)
	}

	stats, err := s.orderRepo.SalesByResponsible(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sales: %w", err)
	}

	if s.erpClient.IsEnabled() {
		s.reconcile(ctx, stats, from, to)
	}

	return &domain.SalesByResponsibleResponse{
		Message: "Ventas por responsable",
		Range:   domain.DateRange{From: from, To: to},
		Stats:   stats,
	}, nil
}

func (s *AnalyticsService) reconcile(ctx context.Context, stats []domain.ResponsibleSales, from, to time.Time) {
	billed, err := s.erpClient.GetBilledTotals(ctx, from, to)
	if err != nil {
		s.logger.Warn("ERP reconciliation skipped", zap.Error(err))
		return
	}

	byResponsible := make(map[string]erp.BilledTotal, len(billed))
	for _, b := range billed {
		byResponsible[b.Responsible] = b
	}

	for _, row := range stats {
		b, ok := byResponsible[row.Responsible]
		if !ok {
			continue
		}
		if !b.Total.Equal(row.TotalSales) {
			s.logger.Warn("Billed total diverges from board total",
				zap.String("responsible", row.Responsible),
				zap.String("board_total", row.TotalSales.String()),
				zap.String("billed_total", b.Total.String()),
			)
		}
	}
}
