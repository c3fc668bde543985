package repository

import (
	"context"
	"database/sql"

	"github.com/coursekit/identity/internal/database"
	"github.com/coursekit/identity/internal/user/domain"

	apperrors "github.com/coursekit/identity/internal/errors"
)

// MySQLEnrollmentRepository handles enrollment persistence for MySQL
type MySQLEnrollmentRepository struct {
	db *sql.DB
}

// NewMySQLEnrollmentRepository creates a new MySQLEnrollmentRepository
func NewMySQLEnrollmentRepository(db *sql.DB) *MySQLEnrollmentRepository {
	return &MySQLEnrollmentRepository{
		db: db,
	}
}

// Create inserts a new enrollment and populates the generated ID.
func (r *MySQLEnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO enrollments (user_id, course_id, status, enrolled_at)
			  VALUES (?, ?, ?, NOW())`

	result, err := querier.ExecContext(ctx, query,
		enrollment.UserID, enrollment.CourseID, enrollment.Status,
	)
	if err != nil {
		// Unique constraint on (user_id, course_id)
		if isMySQLUniqueViolation(err) {
			return domain.ErrAlreadyEnrolled
		}
		return apperrors.Wrap(err, "failed to create enrollment")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to get inserted enrollment id")
	}
	enrollment.ID = id
	return nil
}

// ListByUserID retrieves a user's enrollments, newest first.
func (r *MySQLEnrollmentRepository) ListByUserID(
	ctx context.Context,
	userID int64,
) ([]*domain.Enrollment, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, course_id, status, enrolled_at
			  FROM enrollments
			  WHERE user_id = ?
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
