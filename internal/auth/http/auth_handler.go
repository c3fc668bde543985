package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	"github.com/coursekit/identity/internal/auth/http/dto"
	authUseCase "github.com/coursekit/identity/internal/auth/usecase"
	"github.com/coursekit/identity/internal/httputil"
	customValidation "github.com/coursekit/identity/internal/validation"
)

// AuthHandler handles HTTP requests for authentication operations.
type AuthHandler struct {
	authUseCase authUseCase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new authentication handler with required dependencies.
func NewAuthHandler(authUseCase authUseCase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// LoginHandler authenticates credentials and issues a bearer token.
// POST /v1/auth/login
// Returns 200 OK with the token, or 401 INVALID_CREDENTIALS on any failure.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, err := h.authUseCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenToLoginResponse(token))
}

// WhoamiHandler echoes the verified identity of the caller.
// GET /v1/auth/whoami - Requires authentication.
// Returns 200 OK with the claims the guard extracted from the token.
func (h *AuthHandler) WhoamiHandler(c *gin.Context) {
	claims, ok := GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrTokenMissing, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClaimsToWhoamiResponse(claims))
}
