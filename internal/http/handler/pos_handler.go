package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/service"
	"go.uber.org/zap"
)

type POSHandler struct {
	posService *service.POSService
	logger     *zap.Logger
}

func NewPOSHandler(posService *service.POSService, logger *zap.Logger) *POSHandler {
	return &POSHandler{
		posService: posService,
		logger:     logger,
	}
}

// ListIncoming godoc
// @Summary List dispatches headed to a branch
// @Tags POS
// @Produce json
// @Param destination query string true "Branch name"
// @Param status query string false "Reception status" Enums(PENDING, RECEIVED, PROBLEM)
// @Success 200 {array} domain.IncomingDispatchDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /pos/dispatches [get]
func (h *POSHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	dtos, err := h.posService.ListIncoming(r.Context(),
		query.Get("destination"),
		domain.ReceptionStatus(query.Get("status")),
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to list incoming dispatches", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list incoming dispatches")
		return
	}
	respondJSON(w, http.StatusOK, dtos)
}

// ConfirmReception godoc
// @Summary Confirm reception of a dispatch
// @Description Records the branch-side verification of each item. Missing or damaged items flag the dispatch as a problem.
// @Tags POS
// @Accept json
// @Produce json
// @Param id path string true "Dispatch ID"
// @Param request body domain.ConfirmReceptionRequest true "Reception"
// @Success 200 {object} domain.IncomingDispatchDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /pos/dispatches/{id}/reception [post]
func (h *POSHandler) ConfirmReception(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid dispatch ID")
		return
	}

	var req domain.ConfirmReceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.posService.ConfirmReception(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Dispatch not found")
		case errors.Is(err, service.ErrAlreadyReceived):
			respondWithError(w, http.StatusConflict, "Dispatch already received")
		default:
			h.logger.Error("Failed to confirm reception", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to confirm reception")
		}
		return
	}

	respondJSON(w, http.StatusOK, dto)
}
