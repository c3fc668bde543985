package domain

import (
	"time"
)

// EnrollmentStatus tracks the lifecycle of a course enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Enrollment links a user to a course owned by the course service. CourseID
// is a logical reference; there is no foreign key across service boundaries.
type Enrollment struct {
	ID         int64
	UserID     int64
	CourseID   int64
	Status     EnrollmentStatus
	EnrolledAt time.Time
}
