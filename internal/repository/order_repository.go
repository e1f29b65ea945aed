package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Payments").
		Preload("Dispatches.Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *OrderRepository) List(ctx context.Context, page, pageSize int, search string, stage domain.ProductionStage, from, to *time.Time) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Order{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(customer_name) LIKE ? OR customer_phone LIKE ?", searchPattern, searchPattern)
	}
	if stage != "" {
		query = query.Where("production_stage = ?", stage)
	}
	if from != nil {
		query = query.Where("delivery_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("delivery_date < ?", *to)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Products").Preload("Payments").
		Offset(offset).Limit(pageSize).
		Order("delivery_date ASC").
		Find(&orders).Error

	return orders, total, err
}

// ListByDeliveryWindow returns orders with a delivery date inside [from, to),
// products preloaded. Either bound may be nil to leave that side open.
func (r *OrderRepository) ListByDeliveryWindow(ctx context.Context, from, to *time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	query := r.db.WithContext(ctx).Preload("Products")
	if from != nil {
		query = query.Where("delivery_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("delivery_date < ?", *to)
	}
	err := query.Order("delivery_date ASC").Find(&orders).Error
	return orders, err
}

// ListActiveWithProducts returns orders still in production (not finished,
// not void) with their products, oldest delivery first
func (r *OrderRepository) ListActiveWithProducts(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("production_stage NOT IN ?", []domain.ProductionStage{domain.StageFinished, domain.StageVoid}).
		Order("delivery_date ASC").
		Find(&orders).Error
	return orders, err
}

// ListAllWithProducts returns every order with its products, regardless of
// stage or delivery date. Raw board mode only.
func (r *OrderRepository) ListAllWithProducts(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Order("delivery_date ASC").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.ProductionStage) error {
	result := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Update("production_stage", stage)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStageBatch moves several orders to the same stage in one statement
func (r *OrderRepository) UpdateStageBatch(ctx context.Context, ids []uuid.UUID, stage domain.ProductionStage) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id IN ?", ids).
		Update("production_stage", stage)
	return result.RowsAffected, result.Error
}

func (r *OrderRepository) UpdateProduct(ctx context.Context, product *domain.OrderProduct) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// ListOrdersWithProduct returns active orders containing the named product,
// oldest delivery first, with all products preloaded. Progress registration
// consumes demand in this order.
func (r *OrderRepository) ListOrdersWithProduct(ctx context.Context, productName string) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Joins("JOIN order_products ON order_products.order_id = orders.id").
		Where("order_products.name = ?", productName).
		Where("orders.production_stage NOT IN ?", []domain.ProductionStage{domain.StageFinished, domain.StageVoid}).
		Distinct("orders.*").
		Order("orders.delivery_date ASC").
		Find(&orders).Error
	return orders, err
}

// CountActiveProducts counts unfinished line items on an order. Used to
// decide whether progress registration completed the whole order.
func (r *OrderRepository) CountActiveProducts(ctx context.Context, orderID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.OrderProduct{}).
		Where("order_id = ?", orderID).
		Where("pending_quantity IS NULL OR pending_quantity > 0").
		Count(&count).Error
	return int(count), err
}

func (r *OrderRepository) AddPayment(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *OrderRepository) GetPayments(ctx context.Context, orderID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("date ASC").
		Find(&payments).Error
	return payments, err
}

func (r *OrderRepository) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Update("invoice_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPendingInvoices returns orders that requested an invoice but whose
// electronic invoice has not been confirmed yet
func (r *OrderRepository) ListPendingInvoices(ctx context.Context, limit int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Where("invoice_needed = ? AND invoice_status = ?", true, domain.InvoicePending).
		Order("order_date ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// SalesByResponsible sums order totals per responsible within [from, to)
func (r *OrderRepository) SalesByResponsible(ctx context.Context, from, to time.Time) ([]domain.ResponsibleSales, error) {
	var rows []domain.ResponsibleSales
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("responsible, COUNT(*) AS count, SUM(total_value) AS total_sales").
		Where("order_date >= ? AND order_date < ?", from, to).
		Where("production_stage <> ?", domain.StageVoid).
		Group("responsible").
		Order("total_sales DESC").
		Scan(&rows).Error
	return rows, err
}
