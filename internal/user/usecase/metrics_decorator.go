package usecase

import (
	"context"
	"time"

	"github.com/coursekit/identity/internal/metrics"
	"github.com/coursekit/identity/internal/user/domain"
)

// userUseCaseWithMetrics decorates UserUseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UserUseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UserUseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UserUseCase, m metrics.BusinessMetrics) UserUseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Register records metrics for user registration operations.
func (u *userUseCaseWithMetrics) Register(ctx context.Context, input RegisterInput) (*UserDetail, error) {
	start := time.Now()
	detail, err := u.next.Register(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user", "register", status)
	u.metrics.RecordDuration(ctx, "user", "register", time.Since(start), status)

	return detail, err
}

// Get records metrics for user retrieval operations.
func (u *userUseCaseWithMetrics) Get(ctx context.Context, id int64) (*UserDetail, error) {
	start := time.Now()
	detail, err := u.next.Get(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user", "user_get", status)
	u.metrics.RecordDuration(ctx, "user", "user_get", time.Since(start), status)

	return detail, err
}

// List records metrics for user listing operations.
func (u *userUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	start := time.Now()
	users, err := u.next.List(ctx, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user", "user_list", status)
	u.metrics.RecordDuration(ctx, "user", "user_list", time.Since(start), status)

	return users, err
}

// Enroll records metrics for enrollment operations.
func (u *userUseCaseWithMetrics) Enroll(ctx context.Context, userID, courseID int64) (*domain.Enrollment, error) {
	start := time.Now()
	enrollment, err := u.next.Enroll(ctx, userID, courseID)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user", "enroll", status)
	u.metrics.RecordDuration(ctx, "user", "enroll", time.Since(start), status)

	return enrollment, err
}

// ListEnrollments records metrics for enrollment listing operations.
func (u *userUseCaseWithMetrics) ListEnrollments(ctx context.Context, userID int64) ([]*domain.Enrollment, error) {
	start := time.Now()
	enrollments, err := u.next.ListEnrollments(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user", "enrollment_list", status)
	u.metrics.RecordDuration(ctx, "user", "enrollment_list", time.Since(start), status)

	return enrollments, err
}
