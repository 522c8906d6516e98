package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AvatarRepository keeps avatar images inline on the user row.
type AvatarRepository interface {
	Put(ctx context.Context, userID uuid.UUID, image []byte) error
	Get(ctx context.Context, userID uuid.UUID) ([]byte, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

const (
	putAvatarQuery    = `UPDATE users SET avatar = $1, updated_at = now() WHERE id = $2`
	getAvatarQuery    = `SELECT avatar FROM users WHERE id = $1`
	deleteAvatarQuery = `UPDATE users SET avatar = NULL, updated_at = now() WHERE id = $1`
)

type postgresAvatarRepository struct {
	db *sqlx.DB
}

func NewPostgresAvatarRepository(db *sqlx.DB) AvatarRepository {
	return &postgresAvatarRepository{db: db}
}

func (r *postgresAvatarRepository) Put(ctx context.Context, userID uuid.UUID, image []byte) error {
	res, err := r.db.ExecContext(ctx, putAvatarQuery, image, userID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *postgresAvatarRepository) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var image []byte
	err := r.db.GetContext(ctx, &image, getAvatarQuery, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, ErrNotFound
	}

	return image, nil
}

func (r *postgresAvatarRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteAvatarQuery, userID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
