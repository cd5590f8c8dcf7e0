package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/academy-system/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertAcademySQL = `INSERT INTO academies (name) VALUES ($1) RETURNING id, created_at`
	insertOwnerSQL   = `INSERT INTO users (academy_id, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
)

func newMockUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresUserRepository(db), mock
}

func TestCreateAcademyWithOwner(t *testing.T) {
	t.Parallel()
	repo, mock := newMockUserRepo(t)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(insertAcademySQL).
		WithArgs("Atlas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), now))
	mock.ExpectQuery(insertOwnerSQL).
		WithArgs(4, "owner@atlas.ma", "hash", "owner").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), now))
	mock.ExpectCommit()

	academy := &models.Academy{Name: "Atlas"}
	owner := &models.User{Email: "owner@atlas.ma", PasswordHash: "hash", Role: models.RoleOwner}
	require.NoError(t, repo.CreateAcademyWithOwner(context.Background(), academy, owner))

	assert.Equal(t, 4, academy.ID)
	assert.Equal(t, 9, owner.ID)
	assert.Equal(t, 4, owner.AcademyID)
	assert.Equal(t, now, owner.CreatedAt)
}

func TestCreateAcademyWithOwnerConflicts(t *testing.T) {
	t.Parallel()

	t.Run("academy name", func(t *testing.T) {
		repo, mock := newMockUserRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(insertAcademySQL).
			WithArgs("Atlas").
			WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "academies_name_key"})
		mock.ExpectRollback()

		err := repo.CreateAcademyWithOwner(context.Background(), &models.Academy{Name: "Atlas"}, &models.User{})
		require.ErrorIs(t, err, ErrAcademyNameConflict)
	})

	t.Run("owner email", func(t *testing.T) {
		repo, mock := newMockUserRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(insertAcademySQL).
			WithArgs("Atlas").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
		mock.ExpectQuery(insertOwnerSQL).
			WithArgs(1, "taken@atlas.ma", "hash", "owner").
			WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "users_email_key"})
		mock.ExpectRollback()

		owner := &models.User{Email: "taken@atlas.ma", PasswordHash: "hash", Role: models.RoleOwner}
		err := repo.CreateAcademyWithOwner(context.Background(), &models.Academy{Name: "Atlas"}, owner)
		require.ErrorIs(t, err, ErrUserEmailConflict)
	})
}

func TestGetByEmail(t *testing.T) {
	t.Parallel()
	repo, mock := newMockUserRepo(t)
	query := `SELECT id, academy_id, email, password_hash, role, created_at FROM users WHERE email = $1`
	columns := []string{"id", "academy_id", "email", "password_hash", "role", "created_at"}

	mock.ExpectQuery(query).
		WithArgs("coach@atlas.ma").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(2), int64(4), "coach@atlas.ma", "hash", "coach", time.Now()))

	user, err := repo.GetByEmail(context.Background(), "coach@atlas.ma")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoach, user.Role)
	assert.Equal(t, 4, user.AcademyID)

	mock.ExpectQuery(query).
		WithArgs("nobody@atlas.ma").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = repo.GetByEmail(context.Background(), "nobody@atlas.ma")
	require.ErrorIs(t, err, ErrUserNotFound)
}
