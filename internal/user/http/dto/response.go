package dto

import (
	"time"

	"github.com/coursekit/identity/internal/user/domain"
	"github.com/coursekit/identity/internal/user/usecase"
)

// UserResponse is the decrypted view of a single user. Profile fields are
// omitted when absent.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	UserType  string    `json:"user_type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Bio       string    `json:"bio,omitempty"`
}

// MapUserDetailToResponse maps a decrypted user view to a response.
func MapUserDetailToResponse(detail *usecase.UserDetail) *UserResponse {
	return &UserResponse{
		ID:        detail.ID,
		Email:     detail.Email,
		UserType:  string(detail.Role),
		IsActive:  detail.IsActive,
		CreatedAt: detail.CreatedAt,
		FirstName: detail.FirstName,
		LastName:  detail.LastName,
		Phone:     detail.Phone,
		Bio:       detail.Bio,
	}
}

// UserSummaryResponse is the listing view of a user. Emails stay encrypted
// at rest and are not decrypted for listings.
type UserSummaryResponse struct {
	ID        int64     `json:"id"`
	UserType  string    `json:"user_type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsersResponse is the paginated listing envelope.
type ListUsersResponse struct {
	Users  []*UserSummaryResponse `json:"users"`
	Offset int                    `json:"offset"`
	Limit  int                    `json:"limit"`
}

// MapUsersToListResponse maps users to a paginated listing response.
func MapUsersToListResponse(users []*domain.User, offset, limit int) *ListUsersResponse {
	summaries := make([]*UserSummaryResponse, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, &UserSummaryResponse{
			ID:        user.ID,
			UserType:  string(user.Role),
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt,
		})
	}
	return &ListUsersResponse{
		Users:  summaries,
		Offset: offset,
		Limit:  limit,
	}
}

// EnrollmentResponse describes a single enrollment.
type EnrollmentResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CourseID   int64     `json:"course_id"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// MapEnrollmentToResponse maps an enrollment to a response.
func MapEnrollmentToResponse(enrollment *domain.Enrollment) *EnrollmentResponse {
	return &EnrollmentResponse{
		ID:         enrollment.ID,
		UserID:     enrollment.UserID,
		CourseID:   enrollment.CourseID,
		Status:     string(enrollment.Status),
		EnrolledAt: enrollment.EnrolledAt,
	}
}

// ListEnrollmentsResponse is the enrollment listing envelope.
type ListEnrollmentsResponse struct {
	Enrollments []*EnrollmentResponse `json:"enrollments"`
}

// MapEnrollmentsToListResponse maps enrollments to a listing response.
func MapEnrollmentsToListResponse(enrollments []*domain.Enrollment) *ListEnrollmentsResponse {
	responses := make([]*EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, MapEnrollmentToResponse(enrollment))
	}
	return &ListEnrollmentsResponse{Enrollments: responses}
}
