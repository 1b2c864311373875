package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/carelink/apiserver/internal/dbx"
	"github.com/carelink/apiserver/types"
)

// UserRepository handles persistence for user accounts. It runs against
// any dbx.Querier, so the same code serves both direct access and the
// registration transaction.
type UserRepository struct {
	db dbx.Querier
}

func NewUserRepository(db dbx.Querier) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT id, first_name, last_name, email, mobile, user_type, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, first_name, last_name, email, mobile, user_type, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Create inserts the user. A collision on the unique email index is
// reported as ErrEmailTaken so callers can surface it as a client error.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, first_name, last_name, email, mobile, user_type, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Mobile,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Mobile,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}
