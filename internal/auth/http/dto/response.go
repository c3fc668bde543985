package dto

import (
	"time"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
)

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// MapTokenToLoginResponse maps a signed token to a login response.
func MapTokenToLoginResponse(token string) *LoginResponse {
	return &LoginResponse{Token: token}
}

// WhoamiResponse describes the authenticated caller as seen by the guards.
type WhoamiResponse struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	UserType  string    `json:"user_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapClaimsToWhoamiResponse maps verified claims to a whoami response.
func MapClaimsToWhoamiResponse(claims *authDomain.Claims) *WhoamiResponse {
	return &WhoamiResponse{
		UserID:    claims.UserID,
		Email:     claims.Email,
		UserType:  string(claims.Role),
		ExpiresAt: claims.ExpiresAt,
	}
}
