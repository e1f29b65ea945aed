package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/mapper"
	"github.com/horno-sanmarino/bakery-api/internal/production"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService struct {
	orderRepo *repository.OrderRepository
	location  *time.Location
	logger    *zap.Logger
}

func NewOrderService(orderRepo *repository.OrderRepository, location *time.Location, logger *zap.Logger) *OrderService {
	if location == nil {
		location = time.UTC
	}
	return &OrderService{
		orderRepo: orderRepo,
		location:  location,
		logger:    logger,
	}
}

func (s *OrderService) Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.CreateOrderResponse, error) {
	order := &domain.Order{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		OrderDate:       time.Now().UTC(),
		DeliveryDate:    req.DeliveryDate,
		DeliveryType:    domain.DeliveryType(req.DeliveryType),
		Branch:          req.Branch,
		DeliveryAddress: req.DeliveryAddress,
		GoogleMapsLink:  req.GoogleMapsLink,
		Comments:        req.Comments,
		Responsible:     req.Responsible,
		SalesChannel:    req.SalesChannel,
		PaymentMethod:   req.PaymentMethod,
		InvoiceNeeded:   req.InvoiceNeeded,
		InvoiceStatus:   domain.InvoicePending,
		DeliveryValue:   req.DeliveryValue,
		ProductionStage: domain.StagePending,
	}

	if req.InvoiceData != nil {
		order.InvoiceData = domain.InvoiceData{
			RUC:          req.InvoiceData.RUC,
			BusinessName: req.InvoiceData.BusinessName,
			Email:        req.InvoiceData.Email,
			Address:      req.InvoiceData.Address,
		}
	}

	total := req.DeliveryValue
	for _, p := range req.Products {
		order.Products = append(order.Products, domain.OrderProduct{
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: p.Price,
			Category:  p.Category,
			Features:  p.Features,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	order.TotalValue = total

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("customer", order.CustomerName),
		zap.Time("delivery_date", order.DeliveryDate),
	)

	return &domain.CreateOrderResponse{
		Message:         "Pedido registrado",
		Order:           mapper.ToOrderDTO(order),
		WhatsappMessage: s.WhatsappSummary(order),
	}, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) List(ctx context.Context, page, pageSize int, search string, stage domain.ProductionStage, from, to *time.Time) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	orders, total, err := s.orderRepo.List(ctx, page, pageSize, search, stage, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]domain.OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, mapper.ToOrderDTO(&orders[i]))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderRequest) (*domain.OrderDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if req.CustomerName != nil {
		order.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		order.CustomerPhone = *req.CustomerPhone
	}
	if req.DeliveryDate != nil {
		order.DeliveryDate = *req.DeliveryDate
	}
	if req.DeliveryType != nil {
		order.DeliveryType = domain.DeliveryType(*req.DeliveryType)
	}
	if req.Branch != nil {
		order.Branch = *req.Branch
	}
	if req.DeliveryAddress != nil {
		order.DeliveryAddress = *req.DeliveryAddress
	}
	if req.Comments != nil {
		order.Comments = *req.Comments
	}
	if req.DeliveryValue != nil {
		order.DeliveryValue = *req.DeliveryValue
	}

	if len(req.Products) > 0 {
		products := make([]domain.OrderProduct, 0, len(req.Products))
		total := order.DeliveryValue
		for _, p := range req.Products {
			products = append(products, domain.OrderProduct{
				OrderID:   order.ID,
				Name:      p.Name,
				Quantity:  p.Quantity,
				UnitPrice: p.Price,
				Category:  p.Category,
				Features:  p.Features,
			})
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
		}
		order.Products = products
		order.TotalValue = total
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) UpdateInvoice(ctx context.Context, id uuid.UUID, req *domain.UpdateInvoiceRequest) (*domain.OrderDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order.InvoiceNeeded = req.InvoiceNeeded
	if req.InvoiceData != nil {
		order.InvoiceData = domain.InvoiceData{
			RUC:          req.InvoiceData.RUC,
			BusinessName: req.InvoiceData.BusinessName,
			Email:        req.InvoiceData.Email,
			Address:      req.InvoiceData.Address,
		}
	}
	if req.InvoiceNeeded && order.InvoiceStatus == "" {
		order.InvoiceStatus = domain.InvoicePending
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update invoice data: %w", err)
	}

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) RegisterPayment(ctx context.Context, orderID uuid.UUID, req *domain.RegisterPaymentRequest) (*domain.PaymentDTO, error) {
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	payment := &domain.Payment{
		OrderID:       orderID,
		Method:        req.Method,
		Amount:        req.Amount,
		Date:          date,
		VoucherNumber: req.VoucherNumber,
		Reference:     req.Reference,
	}

	if err := s.orderRepo.AddPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to register payment: %w", err)
	}

	s.logger.Info("Payment registered",
		zap.String("order_id", orderID.String()),
		zap.String("method", payment.Method),
		zap.String("amount", payment.Amount.String()),
	)

	dto := mapper.ToPaymentDTO(payment)
	return &dto, nil
}

// WhatsappSummary renders the confirmation text sent to the customer over
// WhatsApp after registering an order
func (s *OrderService) WhatsappSummary(order *domain.Order) string {
	lines := make([]string, 0, len(order.Products))
	for i := range order.Products {
		p := &order.Products[i]
		line := fmt.Sprintf("- %dx %s", p.Quantity, p.Name)
		if len(p.Features) > 0 {
			line += fmt.Sprintf(" (%s)", strings.Join(p.Features, ", "))
		}
		lines = append(lines, line)
	}

	delivery := order.DeliveryDate.In(s.location)
	dateFormatted := delivery.Format("02/01/2006")
	timeFormatted := delivery.Format("15:04")

	var locationInfo string
	if order.DeliveryType == domain.DeliveryTypeRetiro {
		branch := order.Branch
		if branch == "" {
			branch = "Principal"
		}
		locationInfo = "Retiro en local - " + branch
	} else {
		address := order.DeliveryAddress
		if address == "" {
			address = "Dirección no especificada"
		}
		locationInfo = address
		if order.GoogleMapsLink != "" {
			locationInfo += "\nLink: " + order.GoogleMapsLink
		}
	}

	deliveryTypeLabel := "Retiro en local"
	if order.DeliveryType == domain.DeliveryTypeDelivery {
		deliveryTypeLabel = "Entrega a domicilio"
	}

	orEmpty := func(v string) string {
		if v == "" {
			return "N/A"
		}
		return v
	}

	return strings.TrimSpace(fmt.Sprintf(`*⚜Confirmado su pedido⚜*
Nombre: %s
Dirección factura: %s
Retiro/Entrega: %s
Pedido:
%s
Fecha y Hora: %s, %s
Celular: %s
Cédula o RUC: %s
Correo: %s
Ubicación: %s`,
		order.CustomerName,
		orEmpty(order.InvoiceData.Address),
		deliveryTypeLabel,
		strings.Join(lines, "\n"),
		dateFormatted, timeFormatted,
		orEmpty(order.CustomerPhone),
		orEmpty(order.InvoiceData.RUC),
		orEmpty(order.InvoiceData.Email),
		locationInfo,
	))
}

// Location exposes the business timezone used for customer-facing dates
func (s *OrderService) Location() *time.Location {
	return s.location
}

// BusinessLocation loads the configured business timezone, defaulting to the
// bakery's home zone and falling back to UTC if the zone cannot be loaded
func BusinessLocation(timezone string, logger *zap.Logger) *time.Location {
	if timezone == "" {
		timezone = production.BusinessTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("Failed to load business timezone, using UTC",
			zap.String("timezone", timezone),
			zap.Error(err),
		)
		return time.UTC
	}
	return loc
}
