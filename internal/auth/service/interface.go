// Package service provides authentication services: password hashing and
// JWT issuance/verification.
package service

import (
	"time"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	userDomain "github.com/coursekit/identity/internal/user/domain"
)

// PasswordService turns plaintext passwords into storable verifiers and
// checks candidate passwords against them.
type PasswordService interface {
	// Hash produces a salted verifier string. Two calls on the same input
	// yield different verifiers (the salt is embedded in the output).
	Hash(password string) (string, error)

	// Verify checks a plaintext password against a stored verifier using a
	// constant-time comparison. A non-matching password returns (false, nil);
	// only a structurally malformed verifier returns an error.
	Verify(password string, verifier string) (bool, error)
}

// TokenService issues and verifies the signed bearer tokens shared across
// the platform services.
type TokenService interface {
	// Issue signs a claim set for the given identity with the configured
	// secret. The token expires ttl from now.
	Issue(userID int64, email string, role userDomain.Role, ttl time.Duration) (string, error)

	// Verify parses and validates a bare token string (no "Bearer " prefix)
	// and returns its typed claims. Failures are classified as
	// ErrTokenInvalid, ErrTokenExpired, or ErrTokenProcessing; signature
	// validity gates every other judgment.
	Verify(token string) (*authDomain.Claims, error)
}
