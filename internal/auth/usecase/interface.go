// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"

	userDomain "github.com/coursekit/identity/internal/user/domain"
)

// AuthUseCase defines the authentication business operations.
type AuthUseCase interface {
	// Login authenticates the credentials and returns a signed bearer token.
	// Every failure (unknown email, wrong password, inactive account)
	// surfaces as ErrInvalidCredentials.
	Login(ctx context.Context, email string, password string) (string, error)
}

// UserReader is the persistence surface the authentication flow needs.
// Implemented by the user repository.
type UserReader interface {
	GetByEmailIndex(ctx context.Context, emailIndex string) (*userDomain.User, error)
}
