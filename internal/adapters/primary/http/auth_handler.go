package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/primary/validation"
	"github.com/lorrc/service-desk-dashboard/internal/auth"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// AuthHandler handles operator authentication
type AuthHandler struct {
	authService  ports.AuthService
	tokenManager *auth.TokenManager
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService ports.AuthService,
	tokenManager *auth.TokenManager,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenManager: tokenManager,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "auth"),
	}
}

// RegisterRoutes sets up the routing for auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.HandleLogin)
}

// OperatorDTO is the public view of an operator.
type OperatorDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"tokenType"`
	ExpiresAt string      `json:"expiresAt"`
	Operator  OperatorDTO `json:"operator"`
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[validation.LoginRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	operator, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	token, err := h.tokenManager.GenerateToken(operator.ID, operator.Email)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "operator logged in", "operator_id", operator.ID)

	WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(h.tokenManager.TTL()).UTC().Format(time.RFC3339),
		Operator: OperatorDTO{
			ID:    operator.ID.String(),
			Email: operator.Email,
		},
	})
}
