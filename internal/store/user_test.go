package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/carelink/apiserver/internal/store"
	"github.com/carelink/apiserver/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{
	"id", "first_name", "last_name", "email", "mobile",
	"user_type", "password_hash", "created_at", "updated_at",
}

func userRow(id, email string, role types.Role) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns).
		AddRow(id, "Jane", "Doe", email, "555-0100", string(role), "hash", now, now)
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := store.NewUserRepository(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("jane@example.com").
			WillReturnRows(userRow("user-1", "jane@example.com", types.RolePatient))

		user, err := repo.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, types.RolePatient, user.Role)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("ghost@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := store.NewUserRepository(db)
	ctx := context.Background()

	user := types.User{
		ID:           "user-1",
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		Mobile:       "555-0100",
		Role:         types.RolePatient,
		PasswordHash: "hash",
	}

	t.Run("success sets timestamps", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnResult(sqlmock.NewResult(0, 1))

		created, err := repo.Create(ctx, user)
		require.NoError(t, err)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	})

	t.Run("duplicate email maps to ErrEmailTaken", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, store.ErrEmailTaken)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(sql.ErrConnDone)

		_, err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
