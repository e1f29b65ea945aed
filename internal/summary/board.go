// Package summary maintains a client-side production board: the aggregated
// demand per bucket, the operator's item selection, and the collapse state of
// category groups. It mirrors what the API serves so that kiosk displays and
// batch tooling can work against a local snapshot.
package summary

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/client"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/production"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Board holds a refreshable snapshot of the production summary.
// All methods are safe for concurrent use.
type Board struct {
	mu sync.Mutex

	api      *client.Client
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time

	dashboard  map[production.Bucket][]production.Item
	rawTasks   []domain.ProductionTaskDTO
	rawMode    bool
	refreshing bool
	lastErr    error

	selected      map[string]struct{}
	collapsed     map[string]struct{}
	categoryOrder []string
}

// Option configures a Board
type Option func(*Board)

// WithCategoryOrder overrides the category preference order used to group
// items on the board
func WithCategoryOrder(order []string) Option {
	return func(b *Board) {
		if len(order) > 0 {
			b.categoryOrder = order
		}
	}
}

// WithLocation overrides the timezone raw-mode bucketing is computed in
func WithLocation(loc *time.Location) Option {
	return func(b *Board) {
		if loc != nil {
			b.location = loc
		}
	}
}

// WithClock overrides the clock raw-mode bucketing is computed against
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBoard creates an empty board backed by the given API client
func NewBoard(api *client.Client, logger *zap.Logger, opts ...Option) *Board {
	loc, err := time.LoadLocation(production.BusinessTimezone)
	if err != nil {
		loc = time.UTC
	}
	b := &Board{
		api:           api,
		logger:        logger,
		location:      loc,
		now:           time.Now,
		dashboard:     make(map[production.Bucket][]production.Item),
		selected:      make(map[string]struct{}),
		collapsed:     make(map[string]struct{}),
		categoryOrder: production.DefaultCategoryOrder,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Refresh loads the board in two stages: the delayed and today buckets are
// fetched in parallel and applied first, then tomorrow and future complete
// the picture. A failure in either stage returns the error, but buckets
// already applied stay visible. Only one refresh runs at a time; a call that
// finds one already in flight returns immediately.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	if b.refreshing {
		b.mu.Unlock()
		return nil
	}
	b.refreshing = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.refreshing = false
		b.mu.Unlock()
	}()

	if err := b.refreshBuckets(ctx, production.CriticalBuckets); err != nil {
		return b.recordErr(err)
	}
	return b.recordErr(b.refreshBuckets(ctx, production.BackgroundBuckets))
}

// Err returns the error of the most recent refresh, or nil if it succeeded.
// Kiosk displays show this alongside whatever buckets are still populated.
func (b *Board) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func (b *Board) recordErr(err error) error {
	b.mu.Lock()
	b.lastErr = err
	b.mu.Unlock()
	return err
}

// RefreshAll loads all four buckets in one request
func (b *Board) RefreshAll(ctx context.Context) error {
	resp, err := b.api.Summary(ctx)
	if err != nil {
		return b.recordErr(fmt.Errorf("failed to fetch summary: %w", err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bucket := range production.Buckets {
		b.dashboard[bucket] = itemsFromDTOs(resp.Dashboard[string(bucket)])
	}
	b.rawMode = false
	b.lastErr = nil
	return nil
}

// RefreshRaw loads every order regardless of stage and switches the board to
// raw mode. Bucketing and aggregation happen locally: finished and void
// orders keep contributing to their buckets, so operators can inspect what
// the filtered view hides.
func (b *Board) RefreshRaw(ctx context.Context) error {
	tasks, err := b.api.AllOrders(ctx)
	if err != nil {
		return b.recordErr(fmt.Errorf("failed to fetch orders: %w", err))
	}

	partitioned := production.Partition(taskRefs(tasks), b.now(), b.location)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.rawTasks = tasks
	for _, bucket := range production.Buckets {
		b.dashboard[bucket] = production.Aggregate(partitioned[bucket], true)
	}
	b.rawMode = true
	b.lastErr = nil
	return nil
}

// taskRefs flattens raw production tasks into aggregation inputs
func taskRefs(tasks []domain.ProductionTaskDTO) []production.OrderRef {
	refs := make([]production.OrderRef, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		for _, p := range task.Products {
			refs = append(refs, production.OrderRef{
				ID:          task.ID.String(),
				ProductName: p.Name,
				Category:    p.Category,
				Client:      task.CustomerName,
				Delivery:    task.DeliveryDate,
				Stage:       domain.ProductionStage(task.ProductionStage),
				Quantity:    p.Quantity,
				Pending:     p.PendingQuantity,
			})
		}
	}
	return refs
}

func (b *Board) refreshBuckets(ctx context.Context, buckets []production.Bucket) error {
	results := make([][]production.Item, len(buckets))

	g, ctx := errgroup.WithContext(ctx)
	for i, bucket := range buckets {
		g.Go(func() error {
			resp, err := b.api.Summary(ctx, bucket)
			if err != nil {
				return fmt.Errorf("failed to fetch %s bucket: %w", bucket, err)
			}
			results[i] = itemsFromDTOs(resp.Dashboard[string(bucket)])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, bucket := range buckets {
		b.dashboard[bucket] = results[i]
	}
	b.rawMode = false
	return nil
}

// Items returns the current snapshot of one bucket
func (b *Board) Items(bucket production.Bucket) []production.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]production.Item, len(b.dashboard[bucket]))
	copy(items, b.dashboard[bucket])
	return items
}

// RawTasks returns the per-order view loaded by RefreshRaw
func (b *Board) RawTasks() []domain.ProductionTaskDTO {
	b.mu.Lock()
	defer b.mu.Unlock()
	tasks := make([]domain.ProductionTaskDTO, len(b.rawTasks))
	copy(tasks, b.rawTasks)
	return tasks
}

// RawMode reports whether the board currently shows the per-order view
func (b *Board) RawMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rawMode
}

// Groups returns a bucket's items grouped by category in board order,
// honoring the collapse state
func (b *Board) Groups(bucket production.Bucket) []production.CategoryGroup {
	b.mu.Lock()
	defer b.mu.Unlock()
	return production.GroupByCategory(bucket, b.dashboard[bucket], b.categoryOrder, b.collapsed)
}

// ToggleCategory flips the collapse state of a category group
func (b *Board) ToggleCategory(groupID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.collapsed[groupID]; ok {
		delete(b.collapsed, groupID)
	} else {
		b.collapsed[groupID] = struct{}{}
	}
}

// selectionKey identifies one product row in one bucket
func selectionKey(bucket production.Bucket, productName string) string {
	return string(bucket) + "|" + productName
}

// ToggleSelection flips whether a product row is selected for batch
// registration. Returns the new state.
func (b *Board) ToggleSelection(bucket production.Bucket, productName string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := selectionKey(bucket, productName)
	if _, ok := b.selected[key]; ok {
		delete(b.selected, key)
		return false
	}
	b.selected[key] = struct{}{}
	return true
}

// IsSelected reports whether a product row is currently selected
func (b *Board) IsSelected(bucket production.Bucket, productName string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.selected[selectionKey(bucket, productName)]
	return ok
}

// SelectionCount returns how many rows are selected
func (b *Board) SelectionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.selected)
}

// ClearSelection deselects everything
func (b *Board) ClearSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = make(map[string]struct{})
}

// BatchRegister submits the full remaining quantity of every selected row as
// one combined progress registration. The selection is cleared and the board
// refetched whether or not the registration succeeded, so the display always
// reflects server state.
func (b *Board) BatchRegister(ctx context.Context) (*domain.RegisterProgressResponse, error) {
	b.mu.Lock()
	req := &domain.RegisterProgressRequest{}
	seen := make(map[string]int)
	for _, bucket := range production.Buckets {
		for _, item := range b.dashboard[bucket] {
			if _, ok := b.selected[selectionKey(bucket, item.ProductName)]; !ok {
				continue
			}
			if idx, ok := seen[item.ProductName]; ok {
				req.Items[idx].Quantity += item.TotalQuantity
				continue
			}
			seen[item.ProductName] = len(req.Items)
			req.Items = append(req.Items, domain.ProgressItem{
				ProductName: item.ProductName,
				Quantity:    item.TotalQuantity,
			})
		}
	}
	b.mu.Unlock()

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("nothing selected")
	}

	resp, err := b.api.RegisterProgress(ctx, req)
	if err != nil {
		b.logger.Error("Batch progress registration failed", zap.Error(err))
	}

	b.ClearSelection()
	if refreshErr := b.Refresh(ctx); refreshErr != nil {
		b.logger.Warn("Failed to refresh board after batch registration", zap.Error(refreshErr))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to register progress: %w", err)
	}
	return resp, nil
}

// VoidItem voids every order contributing to one product row, in parallel.
// Orders voided before a failure stay voided; the board is refetched either
// way so partial outcomes are visible.
func (b *Board) VoidItem(ctx context.Context, bucket production.Bucket, productName string) error {
	b.mu.Lock()
	var orderIDs []uuid.UUID
	for _, item := range b.dashboard[bucket] {
		if item.ProductName != productName {
			continue
		}
		for _, o := range item.Orders {
			if id, err := uuid.Parse(o.ID); err == nil {
				orderIDs = append(orderIDs, id)
			}
		}
	}
	b.mu.Unlock()

	if len(orderIDs) == 0 {
		return fmt.Errorf("no orders found for %q in %s", productName, bucket)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range orderIDs {
		g.Go(func() error {
			if err := b.api.VoidOrder(gctx, id); err != nil {
				return fmt.Errorf("failed to void order %s: %w", id, err)
			}
			return nil
		})
	}
	err := g.Wait()

	if refreshErr := b.Refresh(ctx); refreshErr != nil {
		b.logger.Warn("Failed to refresh board after void", zap.Error(refreshErr))
	}
	return err
}

func itemsFromDTOs(dtos []domain.SummaryItemDTO) []production.Item {
	items := make([]production.Item, 0, len(dtos))
	for _, dto := range dtos {
		item := production.Item{
			ProductName:   dto.ProductName,
			Category:      dto.Category,
			TotalQuantity: dto.TotalQuantity,
			Urgency:       dto.Urgency,
			Orders:        make([]production.OrderRef, 0, len(dto.Orders)),
		}
		for _, o := range dto.Orders {
			item.Orders = append(item.Orders, production.OrderRef{
				ID:          o.ID.String(),
				ProductName: dto.ProductName,
				Category:    dto.Category,
				Client:      o.Client,
				Delivery:    o.Delivery,
				Stage:       domain.ProductionStage(o.Stage),
				Quantity:    o.Quantity,
				Pending:     o.PendingInOrder,
			})
		}
		items = append(items, item)
	}
	return items
}
