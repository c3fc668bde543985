// Package usecase implements business logic orchestration for user management.
package usecase

import (
	"context"
	"time"

	outboxDomain "github.com/coursekit/identity/internal/outbox/domain"
	"github.com/coursekit/identity/internal/user/domain"
)

// RegisterInput carries the plaintext registration fields. Plaintext exists
// only in memory during the call; everything persisted is encrypted or
// hashed.
type RegisterInput struct {
	Email     string
	Password  string
	Role      domain.Role
	FirstName string
	LastName  string
	Phone     string
	Bio       string
}

// UserDetail is the decrypted view of a user and their profile. Built by the
// use case so handlers never touch the cipher.
type UserDetail struct {
	ID        int64
	Email     string
	Role      domain.Role
	IsActive  bool
	CreatedAt time.Time
	FirstName string
	LastName  string
	Phone     string
	Bio       string
}

// UserUseCase defines the user management business operations.
type UserUseCase interface {
	// Register creates a user with encrypted email, hashed password, and an
	// optional profile, emitting a user.registered outbox event in the same
	// transaction. Duplicate emails surface as ErrUserAlreadyExists.
	Register(ctx context.Context, input RegisterInput) (*UserDetail, error)

	// Get returns the decrypted view of a user and their profile.
	Get(ctx context.Context, id int64) (*UserDetail, error)

	// List returns users ordered by id with pagination. Emails are not
	// decrypted for listings.
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)

	// Enroll links a user to a course, emitting a user.enrolled outbox event
	// in the same transaction. Duplicate enrollments surface as
	// ErrAlreadyEnrolled.
	Enroll(ctx context.Context, userID, courseID int64) (*domain.Enrollment, error)

	// ListEnrollments returns the user's enrollments, newest first.
	ListEnrollments(ctx context.Context, userID int64) ([]*domain.Enrollment, error)
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByEmailIndex(ctx context.Context, emailIndex string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
}

// ProfileRepository defines profile persistence operations.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error)
}

// EnrollmentRepository defines enrollment persistence operations.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	ListByUserID(ctx context.Context, userID int64) ([]*domain.Enrollment, error)
}

// OutboxWriter is the outbox surface the user flows need. Implemented by the
// outbox repository; writes join the surrounding transaction.
type OutboxWriter interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}
