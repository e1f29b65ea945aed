package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/horno-sanmarino/bakery-api/internal/auth"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Authenticate with email and password
// @Description Verifies credentials and returns a signed bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserInactive):
			respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			h.logger.Error("Login failed", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the account behind the bearer token
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	dto, err := h.authService.Me(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusUnauthorized, "Unknown account")
			return
		}
		h.logger.Error("Failed to load account", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load account")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}
