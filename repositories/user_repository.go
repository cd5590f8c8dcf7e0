package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/academy-system/models"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserEmailConflict   = errors.New("user email conflict")
	ErrAcademyNameConflict = errors.New("academy name conflict")
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateAcademyWithOwner creates a tenant and its first user atomically.
	CreateAcademyWithOwner(ctx context.Context, academy *models.Academy, owner *models.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) CreateAcademyWithOwner(ctx context.Context, academy *models.Academy, owner *models.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO academies (name) VALUES ($1) RETURNING id, created_at`,
		academy.Name,
	).Scan(&academy.ID, &academy.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation {
			return ErrAcademyNameConflict
		}
		return err
	}

	owner.AcademyID = academy.ID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (academy_id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		owner.AcademyID,
		owner.Email,
		owner.PasswordHash,
		owner.Role,
	).Scan(&owner.ID, &owner.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "users_email_key" {
			return ErrUserEmailConflict
		}
		return err
	}

	return tx.Commit()
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, academy_id, email, password_hash, role, created_at
		FROM users
		WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.AcademyID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
