package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coursekit/identity/internal/database"
	"github.com/coursekit/identity/internal/user/domain"

	apperrors "github.com/coursekit/identity/internal/errors"
)

// PostgreSQLProfileRepository handles profile persistence for PostgreSQL
type PostgreSQLProfileRepository struct {
	db *sql.DB
}

// NewPostgreSQLProfileRepository creates a new PostgreSQLProfileRepository
func NewPostgreSQLProfileRepository(db *sql.DB) *PostgreSQLProfileRepository {
	return &PostgreSQLProfileRepository{
		db: db,
	}
}

// Create inserts a new profile and populates the generated ID.
func (r *PostgreSQLProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO user_profiles (user_id, first_name_encrypted, last_name_encrypted, phone_encrypted, bio, created_at)
			  VALUES ($1, $2, $3, $4, $5, NOW())
			  RETURNING id, created_at`

	err := querier.QueryRowContext(ctx, query,
		profile.UserID, profile.FirstNameEncrypted, profile.LastNameEncrypted,
		profile.PhoneEncrypted, profile.Bio,
	).Scan(&profile.ID, &profile.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create profile")
	}
	return nil
}

// GetByUserID retrieves a profile by its owner's user ID.
func (r *PostgreSQLProfileRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*domain.Profile, error) {
	var profile domain.Profile
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, first_name_encrypted, last_name_encrypted, phone_encrypted, bio, created_at
			  FROM user_profiles WHERE user_id = $1`

	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.FirstNameEncrypted,
		&profile.LastNameEncrypted, &profile.PhoneEncrypted, &profile.Bio, &profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get profile by user id")
	}

	return &profile, nil
}
