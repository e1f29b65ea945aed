package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/service"
	"go.uber.org/zap"
)

type WarehouseHandler struct {
	warehouseService *service.WarehouseService
	logger           *zap.Logger
}

func NewWarehouseHandler(warehouseService *service.WarehouseService, logger *zap.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: warehouseService,
		logger:           logger,
	}
}

// RegisterMovement godoc
// @Summary Register a stock movement
// @Description Records an IN, OUT or LOSS movement and adjusts the material's stock in the same transaction
// @Tags Warehouse
// @Accept json
// @Produce json
// @Param request body domain.CreateMovementRequest true "Movement"
// @Success 201 {object} domain.MovementDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /warehouse [post]
func (h *WarehouseHandler) RegisterMovement(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.warehouseService.RegisterMovement(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Raw material not found")
		case errors.Is(err, service.ErrInsufficientStock):
			respondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to register movement", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to register movement")
		}
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// ListMovements godoc
// @Summary List stock movements
// @Tags Warehouse
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Param type query string false "Movement type" Enums(IN, OUT, LOSS)
// @Param from query string false "Date from (RFC 3339)"
// @Param to query string false "Date to (RFC 3339)"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /warehouse [get]
func (h *WarehouseHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))

	movementType := domain.MovementType(query.Get("type"))
	if movementType != "" && !movementType.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Unknown movement type: "+string(movementType))
		return
	}

	from, to, err := parseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.warehouseService.ListMovements(r.Context(), page, pageSize, movementType, from, to)
	if err != nil {
		h.logger.Error("Failed to list movements", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list movements")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// CreateMaterial godoc
// @Summary Create a raw material
// @Tags Warehouse
// @Accept json
// @Produce json
// @Param request body domain.CreateRawMaterialRequest true "Raw material"
// @Success 201 {object} domain.RawMaterialDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /warehouse/materials [post]
func (h *WarehouseHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRawMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.warehouseService.CreateMaterial(r.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to create raw material", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create raw material")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// ListMaterials godoc
// @Summary List raw materials with current stock
// @Tags Warehouse
// @Produce json
// @Param search query string false "Name filter"
// @Success 200 {array} domain.RawMaterialDTO
// @Security BearerAuth
// @Router /warehouse/materials [get]
func (h *WarehouseHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.warehouseService.ListMaterials(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("Failed to list raw materials", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list raw materials")
		return
	}
	respondJSON(w, http.StatusOK, dtos)
}

// CreateProvider godoc
// @Summary Create a provider
// @Tags Warehouse
// @Accept json
// @Produce json
// @Param request body domain.CreateProviderRequest true "Provider"
// @Success 201 {object} domain.ProviderDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /warehouse/providers [post]
func (h *WarehouseHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.warehouseService.CreateProvider(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			respondWithError(w, http.StatusConflict, "Provider already exists")
			return
		}
		h.logger.Error("Failed to create provider", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create provider")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// ListProviders godoc
// @Summary List providers
// @Tags Warehouse
// @Produce json
// @Success 200 {array} domain.ProviderDTO
// @Security BearerAuth
// @Router /warehouse/providers [get]
func (h *WarehouseHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.warehouseService.ListProviders(r.Context())
	if err != nil {
		h.logger.Error("Failed to list providers", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list providers")
		return
	}
	respondJSON(w, http.StatusOK, dtos)
}
