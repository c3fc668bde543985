package domain

import (
	"github.com/coursekit/identity/internal/errors"
)

// Authentication and authorization error definitions.
//
// Token failures are distinguishable to the caller (each carries a stable
// code, see Code), but none of them leak claim contents before signature
// validation succeeds. Credential failures collapse into a single generic
// error so the response never reveals whether the email or the password was
// wrong.
var (
	// ErrTokenMissing indicates no token was presented at all.
	ErrTokenMissing = errors.Wrap(errors.ErrUnauthorized, "token is missing")

	// ErrTokenExpired indicates a correctly signed token past its expiry.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token has expired")

	// ErrTokenInvalid indicates a malformed token, a signature mismatch, or a
	// wrong signing algorithm. Signature validity gates every other check: a
	// token that is both expired and tampered reports this error, never
	// ErrTokenExpired.
	ErrTokenInvalid = errors.Wrap(errors.ErrUnauthorized, "token is invalid")

	// ErrTokenProcessing is the catch-all for any other decode failure,
	// still surfaced as a 401-class error.
	ErrTokenProcessing = errors.Wrap(errors.ErrUnauthorized, "token processing error")

	// ErrForbiddenAccess indicates a valid token whose role does not satisfy
	// the guarded operation. Only reachable after successful verification.
	ErrForbiddenAccess = errors.Wrap(errors.ErrForbidden, "insufficient role privileges")

	// ErrInvalidCredentials is the single outward signal for every
	// authentication failure: unknown email, wrong password, or inactive
	// account. Collapsing them prevents user enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrMalformedVerifier indicates a stored password verifier that cannot
	// be parsed. This is a data corruption signal, not a failed match.
	ErrMalformedVerifier = errors.New("malformed password verifier")
)

// Stable caller-facing error codes, asserted verbatim by the sibling
// services' test suites.
const (
	CodeTokenMissing       = "TOKEN_MISSING"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenProcessing    = "TOKEN_PROCESSING_ERROR"
	CodeForbiddenAccess    = "FORBIDDEN_ACCESS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// Code maps an authentication error to its stable caller-facing code.
// Returns "" for errors outside the auth taxonomy.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return CodeTokenMissing
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, ErrTokenInvalid):
		return CodeTokenInvalid
	case errors.Is(err, ErrTokenProcessing):
		return CodeTokenProcessing
	case errors.Is(err, ErrForbiddenAccess):
		return CodeForbiddenAccess
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	default:
		return ""
	}
}
