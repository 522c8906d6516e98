package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"task-service/internal/model"
)

type TokenRepository interface {
	Create(ctx context.Context, userID uuid.UUID, tokenHash string) error
	Delete(ctx context.Context, userID uuid.UUID, tokenHash string) error
	DeleteAllByUserID(ctx context.Context, userID uuid.UUID) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.SessionToken, error)
}

const (
	insertTokenQuery     = `INSERT INTO user_tokens (user_id, token_hash) VALUES ($1, $2)`
	deleteTokenQuery     = `DELETE FROM user_tokens WHERE user_id = $1 AND token_hash = $2`
	deleteAllTokensQuery = `DELETE FROM user_tokens WHERE user_id = $1`
	listTokensQuery      = `SELECT id, user_id, token_hash, created_at FROM user_tokens WHERE user_id = $1 ORDER BY seq ASC`
)

type postgresTokenRepository struct {
	db *sqlx.DB
}

func NewPostgresTokenRepository(db *sqlx.DB) TokenRepository {
	return &postgresTokenRepository{db: db}
}

func (r *postgresTokenRepository) Create(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, insertTokenQuery, userID, tokenHash)
	return err
}

// Delete is idempotent: removing a token that is already gone is not an error.
func (r *postgresTokenRepository) Delete(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, deleteTokenQuery, userID, tokenHash)
	return err
}

func (r *postgresTokenRepository) DeleteAllByUserID(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, deleteAllTokensQuery, userID)
	return err
}

func (r *postgresTokenRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.SessionToken, error) {
	tokens := []model.SessionToken{}
	err := r.db.SelectContext(ctx, &tokens, listTokensQuery, userID)
	return tokens, err
}
