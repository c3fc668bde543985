package repository

import (
	"context"
	"database/sql"

	"github.com/coursekit/identity/internal/database"
	"github.com/coursekit/identity/internal/user/domain"

	apperrors "github.com/coursekit/identity/internal/errors"
)

// PostgreSQLEnrollmentRepository handles enrollment persistence for PostgreSQL
type PostgreSQLEnrollmentRepository struct {
	db *sql.DB
}

// NewPostgreSQLEnrollmentRepository creates a new PostgreSQLEnrollmentRepository
func NewPostgreSQLEnrollmentRepository(db *sql.DB) *PostgreSQLEnrollmentRepository {
	return &PostgreSQLEnrollmentRepository{
		db: db,
	}
}

// Create inserts a new enrollment and populates the generated ID.
func (r *PostgreSQLEnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO enrollments (user_id, course_id, status, enrolled_at)
			  VALUES ($1, $2, $3, NOW())
			  RETURNING id, enrolled_at`

	err := querier.QueryRowContext(ctx, query,
		enrollment.UserID, enrollment.CourseID, enrollment.Status,
	).Scan(&enrollment.ID, &enrollment.EnrolledAt)
	if err != nil {
		// Unique constraint on (user_id, course_id)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrAlreadyEnrolled
		}
		return apperrors.Wrap(err, "failed to create enrollment")
	}
	return nil
}

// ListByUserID retrieves a user's enrollments, newest first.
func (r *PostgreSQLEnrollmentRepository) ListByUserID(
	ctx context.Context,
	userID int64,
) ([]*domain.Enrollment, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, course_id, status, enrolled_at
			  FROM enrollments
			  WHERE user_id = $1
			  ORDER BY enrolled_at DESC`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list enrollments")
	}
	defer rows.Close() //nolint:errcheck

	var enrollments []*domain.Enrollment
	for rows.Next() {
		var enrollment domain.Enrollment
		err := rows.Scan(
			&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
			&enrollment.Status, &enrollment.EnrolledAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan enrollment")
		}
		enrollments = append(enrollments, &enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list enrollments")
	}

	return enrollments, nil
}
