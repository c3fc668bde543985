package domain

import (
	"github.com/coursekit/identity/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrMissingKey indicates no PII encryption key is configured.
	//
	// Every encrypt/decrypt operation requires the process-wide key; when it
	// is absent the operation fails fast instead of silently storing
	// plaintext. In practice this is caught at startup by config validation,
	// so hitting this error at request time points at a wiring bug.
	ErrMissingKey = errors.New("encryption key is not configured")

	// ErrInvalidKey indicates the configured PII encryption key is malformed.
	//
	// The key must be a url-safe base64 encoding of exactly 32 bytes.
	ErrInvalidKey = errors.New("encryption key must be url-safe base64 of 32 bytes")

	// ErrInvalidCiphertext indicates a decryption operation failed.
	//
	// This error can occur due to:
	//   - Ciphertext not produced by the current key
	//   - Ciphertext has been tampered with or truncated (authentication failure)
	//   - Corrupted stored data
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidCiphertext = errors.Wrap(errors.ErrInvalidInput, "invalid ciphertext")
)
