package usecase

import (
	"context"

	authService "github.com/coursekit/identity/internal/auth/service"
	"github.com/coursekit/identity/internal/database"
	apperrors "github.com/coursekit/identity/internal/errors"
	outboxDomain "github.com/coursekit/identity/internal/outbox/domain"
	"github.com/coursekit/identity/internal/user/domain"
)

// userUseCase implements the UserUseCase interface.
type userUseCase struct {
	txManager       database.TxManager
	userRepo        UserRepository
	profileRepo     ProfileRepository
	enrollmentRepo  EnrollmentRepository
	outboxRepo      OutboxWriter
	cipher          domain.FieldCipher
	passwordService authService.PasswordService
}

// NewUserUseCase creates a new user use case instance with the provided dependencies.
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	profileRepo ProfileRepository,
	enrollmentRepo EnrollmentRepository,
	outboxRepo OutboxWriter,
	cipher domain.FieldCipher,
	passwordService authService.PasswordService,
) UserUseCase {
	return &userUseCase{
		txManager:       txManager,
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		enrollmentRepo:  enrollmentRepo,
		outboxRepo:      outboxRepo,
		cipher:          cipher,
		passwordService: passwordService,
	}
}

// Register creates the user, the optional profile, and the outbox event in a
// single transaction. The duplicate check goes through the blind index; the
// unique constraint on that column backs it up under concurrent registration.
func (u *userUseCase) Register(ctx context.Context, input RegisterInput) (*UserDetail, error) {
	if !input.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	_, err := u.userRepo.GetByEmailIndex(ctx, u.cipher.EmailIndex(input.Email))
	if err == nil {
		return nil, domain.ErrUserAlreadyExists
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &domain.User{
		Role:     input.Role,
		IsActive: true,
	}
	if err := user.SetEmail(u.cipher, input.Email); err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt email")
	}

	hash, err := u.passwordService.Hash(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}
	user.PasswordHash = hash

	profile := &domain.Profile{Bio: input.Bio}
	if err := profile.SetFirstName(u.cipher, input.FirstName); err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt first name")
	}
	if err := profile.SetLastName(u.cipher, input.LastName); err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt last name")
	}
	if err := profile.SetPhone(u.cipher, input.Phone); err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt phone")
	}

	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}

		if profile.HasData() {
			profile.UserID = user.ID
			if err := u.profileRepo.Create(txCtx, profile); err != nil {
				return err
			}
		}

		event, err := outboxDomain.NewUserRegisteredEvent(user.ID, user.EmailEncrypted, string(user.Role))
		if err != nil {
			return err
		}
		return u.outboxRepo.Create(txCtx, event)
	})
	if err != nil {
		return nil, err
	}

	// Echo the caller-supplied plaintext back; no decryption round-trip needed.
	return &UserDetail{
		ID:        user.ID,
		Email:     input.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Bio:       input.Bio,
	}, nil
}

// Get returns the decrypted view of a user. A user without a profile row
// yields empty profile fields rather than an error.
func (u *userUseCase) Get(ctx context.Context, id int64) (*UserDetail, error) {
	user, err := u.userRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	email, err := user.Email(u.cipher)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt email")
	}

	detail := &UserDetail{
		ID:        user.ID,
		Email:     email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}

	profile, err := u.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return detail, nil
		}
		return nil, err
	}

	if detail.FirstName, err = profile.FirstName(u.cipher); err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt first name")
	}
	if detail.LastName, err = profile.LastName(u.cipher); err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt last name")
	}
	if detail.Phone, err = profile.Phone(u.cipher); err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt phone")
	}
	detail.Bio = profile.Bio

	return detail, nil
}

// List returns users ordered by id with pagination.
func (u *userUseCase) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	return u.userRepo.List(ctx, offset, limit)
}

// Enroll creates the enrollment and its outbox event in a single transaction.
func (u *userUseCase) Enroll(ctx context.Context, userID, courseID int64) (*domain.Enrollment, error) {
	if _, err := u.userRepo.Get(ctx, userID); err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   domain.EnrollmentStatusActive,
	}

	err := u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.enrollmentRepo.Create(txCtx, enrollment); err != nil {
			return err
		}

		event, err := outboxDomain.NewUserEnrolledEvent(userID, courseID)
		if err != nil {
			return err
		}
		return u.outboxRepo.Create(txCtx, event)
	})
	if err != nil {
		return nil, err
	}

	return enrollment, nil
}

// ListEnrollments returns the user's enrollments, newest first.
func (u *userUseCase) ListEnrollments(ctx context.Context, userID int64) ([]*domain.Enrollment, error) {
	if _, err := u.userRepo.Get(ctx, userID); err != nil {
		return nil, err
	}
	return u.enrollmentRepo.ListByUserID(ctx, userID)
}
