package domain

import (
	"github.com/coursekit/identity/internal/errors"
)

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	// Surfaced as a recoverable conflict, never a fatal failure.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user with this email already exists")

	// ErrInvalidRole indicates the role is not one of the known values.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "role must be student or instructor")

	// ErrAlreadyEnrolled indicates the user is already enrolled in the course.
	ErrAlreadyEnrolled = errors.Wrap(errors.ErrConflict, "user already enrolled in this course")

	// ErrEnrollmentNotFound indicates the requested enrollment does not exist.
	ErrEnrollmentNotFound = errors.Wrap(errors.ErrNotFound, "enrollment not found")
)
