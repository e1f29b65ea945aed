package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/mapper"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// POSService serves the branch side of dispatches: incoming shipments and
// reception confirmation.
type POSService struct {
	dispatchRepo *repository.DispatchRepository
	orderRepo    *repository.OrderRepository
	logger       *zap.Logger
}

func NewPOSService(
	dispatchRepo *repository.DispatchRepository,
	orderRepo *repository.OrderRepository,
	logger *zap.Logger,
) *POSService {
	return &POSService{
		dispatchRepo: dispatchRepo,
		orderRepo:    orderRepo,
		logger:       logger,
	}
}

// ListIncoming returns dispatches headed to a branch
func (s *POSService) ListIncoming(ctx context.Context, destination string, status domain.ReceptionStatus) ([]domain.IncomingDispatchDTO, error) {
	if destination == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrInvalidInput)
	}
	if status != "" && status != domain.ReceptionPending && status != domain.ReceptionReceived && status != domain.ReceptionProblem {
		return nil, fmt.Errorf("%w: unknown reception status %q", ErrInvalidInput, status)
	}

	dispatches, err := s.dispatchRepo.ListIncoming(ctx, destination, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming dispatches: %w", err)
	}

	dtos := make([]domain.IncomingDispatchDTO, 0, len(dispatches))
	for i := range dispatches {
		dispatch := &dispatches[i]
		order, err := s.orderRepo.GetByID(ctx, dispatch.OrderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load order for dispatch: %w", err)
		}
		dtos = append(dtos, mapper.ToIncomingDispatchDTO(dispatch, order))
	}
	return dtos, nil
}

// ConfirmReception records the branch-side verification of a dispatch. Any
// item reported missing or damaged flags the whole dispatch as a problem.
func (s *POSService) ConfirmReception(ctx context.Context, dispatchID uuid.UUID, req *domain.ConfirmReceptionRequest) (*domain.IncomingDispatchDTO, error) {
	dispatch, err := s.dispatchRepo.GetByID(ctx, dispatchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dispatch: %w", err)
	}

	if dispatch.ReceptionStatus != domain.ReceptionPending {
		return nil, ErrAlreadyReceived
	}

	reported := make(map[string]*domain.ReceptionItemInput, len(req.Items))
	for i := range req.Items {
		reported[req.Items[i].ProductName] = &req.Items[i]
	}

	hasProblem := false
	for i := range dispatch.Items {
		item := &dispatch.Items[i]
		input, ok := reported[item.ProductName]
		if !ok {
			continue
		}
		received := input.QuantityReceived
		item.QuantityReceived = &received
		item.ItemStatus = domain.DispatchItemStatus(input.ItemStatus)
		if item.ItemStatus != domain.DispatchItemOK || received < item.QuantitySent {
			hasProblem = true
		}
		if err := s.dispatchRepo.UpdateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to update dispatch item: %w", err)
		}
	}

	now := time.Now().UTC()
	dispatch.ReceivedAt = &now
	dispatch.ReceivedBy = req.ReceivedBy
	dispatch.ReceptionNotes = req.ReceptionNotes
	if hasProblem {
		dispatch.ReceptionStatus = domain.ReceptionProblem
	} else {
		dispatch.ReceptionStatus = domain.ReceptionReceived
	}

	if err := s.dispatchRepo.Update(ctx, dispatch); err != nil {
		return nil, fmt.Errorf("failed to update dispatch: %w", err)
	}

	s.logger.Info("Dispatch reception confirmed",
		zap.String("dispatch_id", dispatchID.String()),
		zap.String("status", string(dispatch.ReceptionStatus)),
		zap.String("received_by", req.ReceivedBy),
	)

	order, err := s.orderRepo.GetByID(ctx, dispatch.OrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load order for dispatch: %w", err)
	}

	dto := mapper.ToIncomingDispatchDTO(dispatch, order)
	return &dto, nil
}
