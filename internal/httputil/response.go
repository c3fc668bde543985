// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	apperrors "github.com/coursekit/identity/internal/errors"
)

// ErrorResponse represents a structured error response.
//
// Code carries the stable machine-readable codes (TOKEN_MISSING,
// TOKEN_EXPIRED, TOKEN_INVALID, TOKEN_PROCESSING_ERROR, FORBIDDEN_ACCESS,
// INVALID_CREDENTIALS) that the sibling services assert verbatim.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// authErrorMessages maps stable auth codes to their caller-facing messages.
var authErrorMessages = map[string]string{
	authDomain.CodeTokenMissing:       "Token is missing",
	authDomain.CodeTokenExpired:       "Token has expired",
	authDomain.CodeTokenInvalid:       "Token is invalid",
	authDomain.CodeTokenProcessing:    "Token processing error",
	authDomain.CodeForbiddenAccess:    "Insufficient role privileges",
	authDomain.CodeInvalidCredentials: "Invalid credentials",
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response.
//
// Auth-taxonomy errors get their stable code and a 401/403 status; other
// domain errors map through the generic sentinels. Unknown errors collapse
// to 500 without exposing details.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse

	switch {
	case authDomain.Code(err) != "":
		code := authDomain.Code(err)
		statusCode = http.StatusUnauthorized
		errorLabel := "unauthorized"
		if apperrors.Is(err, apperrors.ErrForbidden) {
			statusCode = http.StatusForbidden
			errorLabel = "forbidden"
		}
		errorResponse = ErrorResponse{
			Error:   errorLabel,
			Message: authErrorMessages[code],
			Code:    code,
		}

	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		}

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
		}

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errorResponse = ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication is required",
		}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to access this resource",
		}

	default:
		// For unknown/internal errors, don't expose details to the client
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}

	// Log the full error details (including wrapped errors)
	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	errorResponse := ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	}

	c.JSON(http.StatusBadRequest, errorResponse)
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	errorResponse := ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	}

	c.JSON(http.StatusUnprocessableEntity, errorResponse)
}
