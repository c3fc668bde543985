// Package domain defines authentication domain types and error classification.
package domain

import (
	"time"

	userDomain "github.com/coursekit/identity/internal/user/domain"
)

// Claims is the typed payload of a verified token. It is only ever
// constructed after signature verification succeeds; handlers and guards
// never see raw token payloads.
//
// The wire form is a standard HS256 JWT with JSON keys user_id, email,
// user_type, and exp, shared verbatim by the course and progress services.
type Claims struct {
	UserID    int64
	Email     string
	Role      userDomain.Role
	ExpiresAt time.Time
}
