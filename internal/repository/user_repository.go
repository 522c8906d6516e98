package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"task-service/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDAndToken(ctx context.Context, id uuid.UUID, tokenHash string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const (
	insertUserQuery = `INSERT INTO users (name, email, password_hash, age) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`

	selectUserByEmailQuery = `SELECT id, name, email, password_hash, age, created_at, updated_at FROM users WHERE email = $1`

	selectUserByIDQuery = `SELECT id, name, email, password_hash, age, created_at, updated_at FROM users WHERE id = $1`

	selectUserByTokenQuery = `SELECT u.id, u.name, u.email, u.password_hash, u.age, u.created_at, u.updated_at
		FROM users u
		JOIN user_tokens t ON t.user_id = u.id
		WHERE u.id = $1 AND t.token_hash = $2`

	updateUserQuery = `UPDATE users SET name = $1, email = $2, password_hash = $3, age = $4, updated_at = now() WHERE id = $5 RETURNING updated_at`

	deleteUserQuery = `DELETE FROM users WHERE id = $1`
)

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.QueryRowxContext(ctx, insertUserQuery, user.Name, user.Email, user.PasswordHash, user.Age).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}

	return err
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.get(ctx, selectUserByEmailQuery, email)
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(ctx, selectUserByIDQuery, id)
}

func (r *postgresUserRepository) FindByIDAndToken(ctx context.Context, id uuid.UUID, tokenHash string) (*model.User, error) {
	return r.get(ctx, selectUserByTokenQuery, id, tokenHash)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *model.User) error {
	err := r.db.QueryRowxContext(ctx, updateUserQuery, user.Name, user.Email, user.PasswordHash, user.Age, user.ID).
		Scan(&user.UpdatedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicateEmail
	}

	return err
}

func (r *postgresUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

func (r *postgresUserRepository) get(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, query, args...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
