package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/service"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService  *service.OrderService
	exportService *service.ExportService
	logger        *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, exportService *service.ExportService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		exportService: exportService,
		logger:        logger,
	}
}

// Create godoc
// @Summary Register a new order
// @Description Creates an order with its line items and returns the WhatsApp confirmation text
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body domain.CreateOrderRequest true "Order"
// @Success 201 {object} domain.CreateOrderResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.orderService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to create order", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// List godoc
// @Summary List orders
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Param search query string false "Customer name or phone"
// @Param stage query string false "Production stage" Enums(PENDING, IN_PROCESS, FINISHED, VOID)
// @Param from query string false "Delivery date from (RFC 3339)"
// @Param to query string false "Delivery date to (RFC 3339)"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))

	stage := domain.ProductionStage(query.Get("stage"))
	if stage != "" && !stage.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Unknown stage: "+string(stage))
		return
	}

	from, to, err := parseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.orderService.List(r.Context(), page, pageSize, query.Get("search"), stage, from, to)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Get godoc
// @Summary Get one order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.OrderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	dto, err := h.orderService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get order")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Update godoc
// @Summary Update an order
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.UpdateOrderRequest true "Changes"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /orders/{id} [put]
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req domain.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("Failed to update order", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// UpdateInvoice godoc
// @Summary Update an order's billing data
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.UpdateInvoiceRequest true "Billing data"
// @Success 200 {object} domain.OrderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /orders/{id}/invoice [put]
func (h *OrderHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req domain.UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.UpdateInvoice(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("Failed to update invoice data", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update invoice data")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// RegisterPayment godoc
// @Summary Register a collection against an order
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.RegisterPaymentRequest true "Payment"
// @Success 201 {object} domain.PaymentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /orders/{id}/collection [post]
func (h *OrderHandler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req domain.RegisterPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.RegisterPayment(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("Failed to register payment", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to register payment")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// Export godoc
// @Summary Export orders as XLSX
// @Tags Orders
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "Delivery date from (RFC 3339)"
// @Param to query string false "Delivery date to (RFC 3339)"
// @Success 200 {file} binary
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /orders/export [get]
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.exportService.Orders(r.Context(), from, to)
	if err != nil {
		h.logger.Error("Failed to export orders", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export orders")
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// parseDateRange parses optional RFC 3339 bounds from query parameters
func parseDateRange(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromRaw != "" {
		t, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			return nil, nil, errors.New("invalid 'from' date, expected RFC 3339")
		}
		from = &t
	}
	if toRaw != "" {
		t, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			return nil, nil, errors.New("invalid 'to' date, expected RFC 3339")
		}
		to = &t
	}
	return from, to, nil
}
