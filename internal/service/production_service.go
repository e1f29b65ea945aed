package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/mapper"
	"github.com/horno-sanmarino/bakery-api/internal/production"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductionService serves the production board: bucketed demand summaries,
// stage transitions and progress registration.
type ProductionService struct {
	orderRepo    *repository.OrderRepository
	dispatchRepo *repository.DispatchRepository
	location     *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

func NewProductionService(
	orderRepo *repository.OrderRepository,
	dispatchRepo *repository.DispatchRepository,
	location *time.Location,
	logger *zap.Logger,
) *ProductionService {
	if location == nil {
		location = time.UTC
	}
	return &ProductionService{
		orderRepo:    orderRepo,
		dispatchRepo: dispatchRepo,
		location:     location,
		now:          time.Now,
		logger:       logger,
	}
}

// orderRefs flattens an order's line items into aggregation inputs
func orderRefs(order *domain.Order) []production.OrderRef {
	refs := make([]production.OrderRef, 0, len(order.Products))
	for i := range order.Products {
		p := &order.Products[i]
		refs = append(refs, production.OrderRef{
			ID:          order.ID.String(),
			ProductName: p.Name,
			Category:    p.Category,
			Client:      order.CustomerName,
			Delivery:    order.DeliveryDate,
			Stage:       order.ProductionStage,
			Quantity:    p.Quantity,
			Pending:     p.PendingQuantity,
		})
	}
	return refs
}

func toSummaryItems(items []production.Item) []domain.SummaryItemDTO {
	out := make([]domain.SummaryItemDTO, 0, len(items))
	for _, item := range items {
		dto := domain.SummaryItemDTO{
			ProductName:   item.ProductName,
			Category:      item.Category,
			TotalQuantity: item.TotalQuantity,
			Urgency:       item.Urgency,
			Orders:        make([]domain.SummaryOrderDTO, 0, len(item.Orders)),
		}
		for _, ref := range item.Orders {
			id, _ := uuid.Parse(ref.ID)
			dto.Orders = append(dto.Orders, domain.SummaryOrderDTO{
				ID:             id,
				Quantity:       ref.Quantity,
				PendingInOrder: ref.Pending,
				Client:         ref.Client,
				Delivery:       ref.Delivery,
				Stage:          string(ref.Stage),
			})
		}
		out = append(out, dto)
	}
	return out
}

// bucketWindow translates a bucket into the delivery-date window to query
func bucketWindow(bucket production.Bucket, bounds production.Boundaries) (from, to *time.Time) {
	switch bucket {
	case production.BucketDelayed:
		return nil, &bounds.StartOfToday
	case production.BucketToday:
		return &bounds.StartOfToday, &bounds.StartOfTomorrow
	case production.BucketTomorrow:
		return &bounds.StartOfTomorrow, &bounds.StartOfFuture
	default:
		return &bounds.StartOfFuture, nil
	}
}

// Summary returns the aggregated production demand for the requested buckets.
// With no filter every bucket is computed in one pass; with a filter only the
// matching bucket is queried, which is what staged board loading relies on.
func (s *ProductionService) Summary(ctx context.Context, buckets []production.Bucket) (*domain.SummaryResponse, error) {
	if len(buckets) == 0 {
		buckets = production.Buckets
	}
	bounds := production.BoundsAt(s.now(), s.location)

	resp := &domain.SummaryResponse{
		Dashboard: make(map[string][]domain.SummaryItemDTO, len(buckets)),
	}

	for _, bucket := range buckets {
		if !bucket.IsValid() {
			return nil, fmt.Errorf("%w: unknown bucket %q", ErrInvalidInput, bucket)
		}
		from, to := bucketWindow(bucket, bounds)
		orders, err := s.orderRepo.ListByDeliveryWindow(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to load orders for bucket %s: %w", bucket, err)
		}

		refs := make([]production.OrderRef, 0, len(orders))
		for i := range orders {
			refs = append(refs, orderRefs(&orders[i])...)
		}
		resp.Dashboard[string(bucket)] = toSummaryItems(production.Aggregate(refs, false))
	}

	return resp, nil
}

// ActiveTasks returns the orders still in production, oldest delivery first
func (s *ProductionService) ActiveTasks(ctx context.Context) ([]domain.ProductionTaskDTO, error) {
	orders, err := s.orderRepo.ListActiveWithProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active orders: %w", err)
	}
	tasks := make([]domain.ProductionTaskDTO, 0, len(orders))
	for i := range orders {
		tasks = append(tasks, mapper.ToProductionTaskDTO(&orders[i]))
	}
	return tasks, nil
}

// AllOrders returns every order with its line items, unfiltered. Debug view
// behind the board's raw mode.
func (s *ProductionService) AllOrders(ctx context.Context) ([]domain.ProductionTaskDTO, error) {
	orders, err := s.orderRepo.ListAllWithProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	tasks := make([]domain.ProductionTaskDTO, 0, len(orders))
	for i := range orders {
		tasks = append(tasks, mapper.ToProductionTaskDTO(&orders[i]))
	}
	return tasks, nil
}

// UpdateTask changes an order's production stage and/or notes
func (s *ProductionService) UpdateTask(ctx context.Context, id uuid.UUID, req *domain.UpdateTaskRequest) (*domain.ProductionTaskDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if req.Stage != nil {
		stage := domain.ProductionStage(*req.Stage)
		if !stage.IsValid() || stage == domain.StageVoid {
			return nil, fmt.Errorf("%w: stage %q", ErrInvalidStage, *req.Stage)
		}
		order.ProductionStage = stage
		if stage == domain.StageFinished {
			zero := 0
			for i := range order.Products {
				order.Products[i].PendingQuantity = &zero
			}
		}
	}
	if req.Notes != nil {
		order.ProductionNotes = *req.Notes
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("Production task updated",
		zap.String("order_id", id.String()),
		zap.String("stage", string(order.ProductionStage)),
	)

	dto := mapper.ToProductionTaskDTO(order)
	return &dto, nil
}

// BatchStage moves several orders to the same stage in one statement
func (s *ProductionService) BatchStage(ctx context.Context, req *domain.BatchStageRequest) (int64, error) {
	stage := domain.ProductionStage(req.Stage)
	if !stage.IsValid() || stage == domain.StageVoid {
		return 0, fmt.Errorf("%w: stage %q", ErrInvalidStage, req.Stage)
	}
	affected, err := s.orderRepo.UpdateStageBatch(ctx, req.IDs, stage)
	if err != nil {
		return 0, fmt.Errorf("failed to update stages: %w", err)
	}
	s.logger.Info("Batch stage update",
		zap.Int("requested", len(req.IDs)),
		zap.Int64("affected", affected),
		zap.String("stage", req.Stage),
	)
	return affected, nil
}

// RegisterProgress applies produced quantities against pending demand. For
// each product, progress consumes orders oldest delivery first; orders left
// with nothing pending are marked finished. Quantities beyond the pending
// demand are reported back as unapplied rather than failing the request.
func (s *ProductionService) RegisterProgress(ctx context.Context, req *domain.RegisterProgressRequest) (*domain.RegisterProgressResponse, error) {
	resp := &domain.RegisterProgressResponse{
		Applied: make([]domain.ProgressResult, 0, len(req.Items)),
	}

	for _, item := range req.Items {
		applied, err := s.applyProgress(ctx, item.ProductName, item.Quantity)
		if err != nil {
			return nil, err
		}
		resp.Applied = append(resp.Applied, domain.ProgressResult{
			ProductName: item.ProductName,
			Requested:   item.Quantity,
			Applied:     applied,
		})
	}

	return resp, nil
}

func (s *ProductionService) applyProgress(ctx context.Context, productName string, quantity int) (int, error) {
	orders, err := s.orderRepo.ListOrdersWithProduct(ctx, productName)
	if err != nil {
		return 0, fmt.Errorf("failed to load demand for %s: %w", productName, err)
	}

	left := quantity
	applied := 0

	for i := range orders {
		if left <= 0 {
			break
		}
		order := &orders[i]
		for j := range order.Products {
			p := &order.Products[j]
			if p.Name != productName {
				continue
			}
			remaining := p.Remaining()
			if remaining <= 0 {
				continue
			}
			take := remaining
			if take > left {
				take = left
			}
			pending := remaining - take
			p.PendingQuantity = &pending
			if err := s.orderRepo.UpdateProduct(ctx, p); err != nil {
				return applied, fmt.Errorf("failed to record progress: %w", err)
			}
			left -= take
			applied += take
		}

		active, err := s.orderRepo.CountActiveProducts(ctx, order.ID)
		if err != nil {
			return applied, fmt.Errorf("failed to check order completion: %w", err)
		}
		if active == 0 {
			if err := s.orderRepo.UpdateStage(ctx, order.ID, domain.StageFinished); err != nil {
				return applied, fmt.Errorf("failed to finish order: %w", err)
			}
			s.logger.Info("Order finished by progress registration",
				zap.String("order_id", order.ID.String()),
			)
		} else if order.ProductionStage == domain.StagePending {
			if err := s.orderRepo.UpdateStage(ctx, order.ID, domain.StageInProcess); err != nil {
				return applied, fmt.Errorf("failed to advance order: %w", err)
			}
		}
	}

	return applied, nil
}

// Void cancels an order's production. Voiding an already void order is a
// no-op so concurrent board actions cannot fail each other.
func (s *ProductionService) Void(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order.ProductionStage == domain.StageVoid {
		return nil
	}
	if err := s.orderRepo.UpdateStage(ctx, id, domain.StageVoid); err != nil {
		return fmt.Errorf("failed to void order: %w", err)
	}
	s.logger.Info("Order voided", zap.String("order_id", id.String()))
	return nil
}

// Revert moves a finished order back into process so corrections can be made
func (s *ProductionService) Revert(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order.ProductionStage != domain.StageFinished {
		return fmt.Errorf("%w: only finished orders can be reverted", ErrInvalidStage)
	}

	order.ProductionStage = domain.StageInProcess
	for i := range order.Products {
		order.Products[i].PendingQuantity = nil
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return fmt.Errorf("failed to revert order: %w", err)
	}
	s.logger.Info("Order reverted to in process", zap.String("order_id", id.String()))
	return nil
}

// Restore brings a void order back to pending
func (s *ProductionService) Restore(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order.ProductionStage != domain.StageVoid {
		return fmt.Errorf("%w: only void orders can be restored", ErrInvalidStage)
	}
	if err := s.orderRepo.UpdateStage(ctx, id, domain.StagePending); err != nil {
		return fmt.Errorf("failed to restore order: %w", err)
	}
	s.logger.Info("Order restored", zap.String("order_id", id.String()))
	return nil
}

// Dispatch registers a shipment of an order's products to a branch
func (s *ProductionService) Dispatch(ctx context.Context, orderID uuid.UUID, req *domain.CreateDispatchRequest) (*domain.IncomingDispatchDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	dispatch := &domain.Dispatch{
		OrderID:         orderID,
		Destination:     req.Destination,
		Notes:           req.Notes,
		ReportedBy:      req.ReportedBy,
		ReportedAt:      time.Now().UTC(),
		ReceptionStatus: domain.ReceptionPending,
	}
	for _, item := range req.Items {
		dispatch.Items = append(dispatch.Items, domain.DispatchItem{
			ProductName:  item.ProductName,
			QuantitySent: item.QuantitySent,
			ItemStatus:   domain.DispatchItemOK,
		})
	}

	if err := s.dispatchRepo.Create(ctx, dispatch); err != nil {
		return nil, fmt.Errorf("failed to create dispatch: %w", err)
	}

	s.logger.Info("Dispatch registered",
		zap.String("order_id", orderID.String()),
		zap.String("destination", req.Destination),
		zap.Int("items", len(req.Items)),
	)

	dto := mapper.ToIncomingDispatchDTO(dispatch, order)
	return &dto, nil
}

// Report summarizes finished versus pending production over a delivery range
func (s *ProductionService) Report(ctx context.Context, rangeName string) (*domain.ProductionReport, error) {
	bounds := production.BoundsAt(s.now(), s.location)

	var from, to time.Time
	switch rangeName {
	case "", "today":
		rangeName = "today"
		from, to = bounds.StartOfToday, bounds.StartOfTomorrow
	case "week":
		from, to = bounds.StartOfToday, bounds.StartOfToday.AddDate(0, 0, 7)
	case "month":
		from, to = bounds.StartOfToday, bounds.StartOfToday.AddDate(0, 1, 0)
	default:
		return nil, fmt.Errorf("%w: unknown range %q", ErrInvalidInput, rangeName)
	}

	orders, err := s.orderRepo.ListByDeliveryWindow(ctx, &from, &to)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	report := &domain.ProductionReport{
		Range: rangeName,
		From:  from,
		To:    to,
	}
	byProduct := make(map[string]int)
	names := make([]string, 0)

	for i := range orders {
		order := &orders[i]
		switch order.ProductionStage {
		case domain.StageFinished:
			report.Finished++
		case domain.StageVoid:
			continue
		default:
			report.Pending++
		}
		for j := range order.Products {
			p := &order.Products[j]
			if _, ok := byProduct[p.Name]; !ok {
				names = append(names, p.Name)
			}
			byProduct[p.Name] += p.Quantity
		}
	}

	for _, name := range names {
		report.Products = append(report.Products, domain.ProductionReportEntry{
			ProductName: name,
			Quantity:    byProduct[name],
		})
	}

	return report, nil
}
