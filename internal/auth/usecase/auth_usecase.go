package usecase

import (
	"context"
	"time"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	authService "github.com/coursekit/identity/internal/auth/service"
	apperrors "github.com/coursekit/identity/internal/errors"
	userDomain "github.com/coursekit/identity/internal/user/domain"
)

// authUseCase implements AuthUseCase.
type authUseCase struct {
	userReader      UserReader
	cipher          userDomain.FieldCipher
	passwordService authService.PasswordService
	tokenService    authService.TokenService
	tokenTTL        time.Duration
}

// NewAuthUseCase creates an AuthUseCase with the provided dependencies.
func NewAuthUseCase(
	userReader UserReader,
	cipher userDomain.FieldCipher,
	passwordService authService.PasswordService,
	tokenService authService.TokenService,
	tokenTTL time.Duration,
) AuthUseCase {
	return &authUseCase{
		userReader:      userReader,
		cipher:          cipher,
		passwordService: passwordService,
		tokenService:    tokenService,
		tokenTTL:        tokenTTL,
	}
}

// Login authenticates email/password credentials and issues a token.
//
// Lookup goes through the blind index, never through ciphertext comparison.
// Unknown email, wrong password, and inactive account all collapse into
// ErrInvalidCredentials so the response cannot be used for user enumeration.
func (a *authUseCase) Login(ctx context.Context, email string, password string) (string, error) {
	user, err := a.userReader.GetByEmailIndex(ctx, a.cipher.EmailIndex(email))
	if err != nil {
		if apperrors.Is(err, userDomain.ErrUserNotFound) {
			return "", authDomain.ErrInvalidCredentials
		}
		return "", err
	}

	ok, err := a.passwordService.Verify(password, user.PasswordHash)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to verify password")
	}
	if !ok {
		return "", authDomain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", authDomain.ErrInvalidCredentials
	}

	// The token carries the plaintext email for downstream services; decrypt
	// from the stored record rather than trusting the caller-supplied form.
	plainEmail, err := user.Email(a.cipher)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to decrypt email for claims")
	}

	token, err := a.tokenService.Issue(user.ID, plainEmail, user.Role, a.tokenTTL)
	if err != nil {
		return "", err
	}

	return token, nil
}
