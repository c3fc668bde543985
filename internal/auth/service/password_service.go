package service

import (
	"github.com/allisson/go-pwdhash"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	apperrors "github.com/coursekit/identity/internal/errors"
)

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// Hash hashes a plaintext password using Argon2id. The salt is generated per
// call and embedded in the verifier string, so repeated hashing of the same
// password yields different verifiers.
func (s *passwordService) Hash(password string) (string, error) {
	verifier, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return verifier, nil
}

// Verify performs a constant-time comparison between a plaintext password
// and its stored verifier. A mismatch is (false, nil); an unparseable
// verifier is reported as ErrMalformedVerifier.
func (s *passwordService) Verify(password string, verifier string) (bool, error) {
	ok, err := s.hasher.Verify([]byte(password), verifier)
	if err != nil {
		return false, authDomain.ErrMalformedVerifier
	}
	return ok, nil
}

// NewPasswordService creates a PasswordService using Argon2id hashing.
// Uses the Interactive policy, tuned for user-facing login latency.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyInteractive),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passwordService{
		hasher: hasher,
	}
}
