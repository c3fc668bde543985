// Package dto provides data transfer objects for user HTTP handlers.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/coursekit/identity/internal/user/domain"
	customValidation "github.com/coursekit/identity/internal/validation"
)

// RegisterUserRequest contains the parameters for registering a user.
// Profile fields are optional; user_type must be student or instructor.
type RegisterUserRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	UserType  string `json:"user_type" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Bio       string `json:"bio"`
}

// Validate checks if the register user request is valid.
func (r *RegisterUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.PasswordStrength{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		),
		validation.Field(&r.UserType,
			validation.Required,
			validation.In(string(domain.RoleStudent), string(domain.RoleInstructor)),
		),
		validation.Field(&r.Bio,
			validation.Length(0, 1000),
		),
	)
}

// CreateEnrollmentRequest contains the parameters for enrolling a user in a
// course. The user is taken from the authenticated identity, never from the
// body.
type CreateEnrollmentRequest struct {
	CourseID int64 `json:"course_id" binding:"required"`
}

// Validate checks if the create enrollment request is valid.
func (r *CreateEnrollmentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CourseID,
			validation.Required,
			validation.Min(1),
		),
	)
}
