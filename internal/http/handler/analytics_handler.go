package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/service"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *zap.Logger
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// SalesByResponsible godoc
// @Summary Sales totals per responsible
// @Tags Analytics
// @Produce json
// @Param from query string true "Range start (RFC 3339)"
// @Param to query string true "Range end (RFC 3339)"
// @Success 200 {object} domain.SalesByResponsibleResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /analytics/sales-by-responsible [get]
func (h *AnalyticsHandler) SalesByResponsible(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := time.Parse(time.RFC3339, query.Get("from"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'from' date, expected RFC 3339")
		return
	}
	to, err := time.Parse(time.RFC3339, query.Get("to"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'to' date, expected RFC 3339")
		return
	}

	resp, err := h.analyticsService.SalesByResponsible(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to compute sales report", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to compute sales report")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
