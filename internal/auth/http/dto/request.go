// Package dto provides data transfer objects for authentication HTTP handlers.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/coursekit/identity/internal/validation"
)

// LoginRequest contains the credentials for a login attempt.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Validate checks if the login request is valid.
//
// Only shape is checked here; credential correctness is decided by the use
// case, which reports every failure the same way.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
