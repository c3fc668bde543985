package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coursekit/identity/internal/database"
	"github.com/coursekit/identity/internal/user/domain"

	apperrors "github.com/coursekit/identity/internal/errors"
)

// MySQLProfileRepository handles profile persistence for MySQL
type MySQLProfileRepository struct {
	db *sql.DB
}

// NewMySQLProfileRepository creates a new MySQLProfileRepository
func NewMySQLProfileRepository(db *sql.DB) *MySQLProfileRepository {
	return &MySQLProfileRepository{
		db: db,
	}
}

// Create inserts a new profile and populates the generated ID.
func (r *MySQLProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO user_profiles (user_id, first_name_encrypted, last_name_encrypted, phone_encrypted, bio, created_at)
			  VALUES (?, ?, ?, ?, ?, NOW())`

	result, err := querier.ExecContext(ctx, query,
		profile.UserID, profile.FirstNameEncrypted, profile.LastNameEncrypted,
		profile.PhoneEncrypted, profile.Bio,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create profile")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to get inserted profile id")
	}
	profile.ID = id
	return nil
}

// GetByUserID retrieves a profile by its owner's user ID.
func (r *MySQLProfileRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*domain.Profile, error) {
	var profile domain.Profile
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, first_name_encrypted, last_name_encrypted, phone_encrypted, bio, created_at
			  FROM user_profiles WHERE user_id = ?`

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
