package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/production"
	"github.com/horno-sanmarino/bakery-api/internal/service"
	"go.uber.org/zap"
)

type ProductionHandler struct {
	productionService *service.ProductionService
	logger            *zap.Logger
}

func NewProductionHandler(productionService *service.ProductionService, logger *zap.Logger) *ProductionHandler {
	return &ProductionHandler{
		productionService: productionService,
		logger:            logger,
	}
}

// Summary godoc
// @Summary Get aggregated production demand
// @Description Returns per-product demand grouped into delivery buckets (delayed, today, tomorrow, future). Filter to a single bucket with ?bucket=.
// @Tags Production
// @Produce json
// @Param bucket query string false "Bucket filter" Enums(delayed, today, tomorrow, future)
// @Success 200 {object} domain.SummaryResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /production/summary [get]
func (h *ProductionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var buckets []production.Bucket
	if raw := r.URL.Query().Get("bucket"); raw != "" {
		bucket := production.Bucket(raw)
		if !bucket.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Unknown bucket: "+raw)
			return
		}
		buckets = []production.Bucket{bucket}
	}

	resp, err := h.productionService.Summary(r.Context(), buckets)
	if err != nil {
		h.logger.Error("Failed to build production summary", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to build production summary")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Tasks godoc
// @Summary List active production tasks
// @Description Returns orders still in production (not finished, not void) with their line items, oldest delivery first
// @Tags Production
// @Produce json
// @Success 200 {array} domain.ProductionTaskDTO
// @Security BearerAuth
// @Router /production [get]
func (h *ProductionHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.productionService.ActiveTasks(r.Context())
	if err != nil {
		h.logger.Error("Failed to list active production tasks", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list active production tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// AllOrders godoc
// @Summary List all production tasks unfiltered
// @Description Returns every order with its line items regardless of stage or delivery date. Raw board mode.
// @Tags Production
// @Produce json
// @Success 200 {array} domain.ProductionTaskDTO
// @Security BearerAuth
// @Router /production/all-orders [get]
func (h *ProductionHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.productionService.AllOrders(r.Context())
	if err != nil {
		h.logger.Error("Failed to list production tasks", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list production tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// UpdateTask godoc
// @Summary Update a production task
// @Description Changes an order's production stage and/or notes
// @Tags Production
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.UpdateTaskRequest true "Changes"
// @Success 200 {object} domain.ProductionTaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /production/{id} [patch]
func (h *ProductionHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req domain.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.productionService.UpdateTask(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidStage):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to update production task", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update production task")
		}
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// BatchStage godoc
// @Summary Move several orders to the same stage
// @Tags Production
// @Accept json
// @Produce json
// @Param request body domain.BatchStageRequest true "Order IDs and target stage"
// @Success 200 {object} map[string]int64
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /production/batch [patch]
func (h *ProductionHandler) BatchStage(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	affected, err := h.productionService.BatchStage(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStage) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to update stages", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update stages")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"updated": affected})
}

// RegisterProgress godoc
// @Summary Register produced quantities
// @Description Applies produced quantities against pending demand, oldest delivery first. A combined batch of products is one request.
// @Tags Production
// @Accept json
// @Produce json
// @Param request body domain.RegisterProgressRequest true "Produced quantities"
// @Success 200 {object} domain.RegisterProgressResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /production/progress [post]
func (h *ProductionHandler) RegisterProgress(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.productionService.RegisterProgress(r.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to register progress", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to register progress")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Void godoc
// @Summary Void an order's production
// @Description Cancels production for one order. Voiding an already void order succeeds without changes.
// @Tags Production
// @Produce json
// @Param id path string true "Order ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /production/{id}/void [patch]
func (h *ProductionHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.stageTransition(w, r, h.productionService.Void)
}

// Revert godoc
// @Summary Revert a finished order to in process
// @Tags Production
// @Produce json
// @Param id path string true "Order ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /production/{id}/revert [patch]
func (h *ProductionHandler) Revert(w http.ResponseWriter, r *http.Request) {
	h.stageTransition(w, r, h.productionService.Revert)
}

// Restore godoc
// @Summary Restore a void order to pending
// @Tags Production
// @Produce json
// @Param id path string true "Order ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /production/{id}/restore [patch]
func (h *ProductionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.stageTransition(w, r, h.productionService.Restore)
}

func (h *ProductionHandler) stageTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	if err := fn(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidStage):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to change production stage", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to change production stage")
		}
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Dispatch godoc
// @Summary Register a dispatch to a branch
// @Tags Production
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.CreateDispatchRequest true "Dispatch"
// @Success 201 {object} domain.IncomingDispatchDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /production/{id}/dispatch [post]
func (h *ProductionHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req domain.CreateDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.productionService.Dispatch(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("Failed to register dispatch", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to register dispatch")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// Report godoc
// @Summary Production report over a range
// @Tags Production
// @Produce json
// @Param range query string false "Report range" Enums(today, week, month) default(today)
// @Success 200 {object} domain.ProductionReport
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /production/reports [get]
func (h *ProductionHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.productionService.Report(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to build production report", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to build production report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}
