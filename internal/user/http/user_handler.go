// Package http provides HTTP handlers for user registration, lookup, and
// enrollment operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	authHTTP "github.com/coursekit/identity/internal/auth/http"
	"github.com/coursekit/identity/internal/httputil"
	userDomain "github.com/coursekit/identity/internal/user/domain"
	"github.com/coursekit/identity/internal/user/http/dto"
	userUseCase "github.com/coursekit/identity/internal/user/usecase"
	customValidation "github.com/coursekit/identity/internal/validation"
)

// UserHandler handles HTTP requests for user management operations.
type UserHandler struct {
	userUseCase userUseCase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase userUseCase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// RegisterHandler creates a new user with an optional profile.
// POST /v1/auth/register
// Returns 201 Created, or 409 Conflict when the email is already registered.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	detail, err := h.userUseCase.Register(c.Request.Context(), userUseCase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Role:      userDomain.Role(req.UserType),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Bio:       req.Bio,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserDetailToResponse(detail))
}

// GetHandler retrieves a user with decrypted email and profile fields.
// GET /v1/users/:id - Requires authentication.
// Returns 200 OK, or 404 when the user does not exist.
func (h *UserHandler) GetHandler(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	detail, err := h.userUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserDetailToResponse(detail))
}

// ListHandler retrieves users with pagination support.
// GET /v1/users?offset=0&limit=50 - Requires the instructor role.
// Returns 200 OK with the listing view; emails are never included.
func (h *UserHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	users, err := h.userUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUsersToListResponse(users, offset, limit))
}

// CreateEnrollmentHandler enrolls the authenticated user in a course.
// POST /v1/enrollments - Requires authentication.
// Returns 201 Created, or 409 Conflict when already enrolled.
func (h *UserHandler) CreateEnrollmentHandler(c *gin.Context) {
	claims, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrTokenMissing, h.logger)
		return
	}

	var req dto.CreateEnrollmentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	enrollment, err := h.userUseCase.Enroll(c.Request.Context(), claims.UserID, req.CourseID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapEnrollmentToResponse(enrollment))
}

// ListEnrollmentsHandler retrieves a user's enrollments.
// GET /v1/users/:id/enrollments - Requires authentication.
// Returns 200 OK, or 404 when the user does not exist.
func (h *UserHandler) ListEnrollmentsHandler(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	enrollments, err := h.userUseCase.ListEnrollments(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEnrollmentsToListResponse(enrollments))
}

// parseIDParam parses a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter: must be a positive integer", name)
	}
	return id, nil
}
