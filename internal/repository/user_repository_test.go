package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"task-service/internal/model"
	repo "task-service/internal/repository"
)

var userColumns = []string{"id", "name", "email", "password_hash", "age", "created_at", "updated_at"}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestPostgresUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	r := repo.NewPostgresUserRepository(db)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (name, email, password_hash, age) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`)).
		WithArgs("Name", "a@b.com", "hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), now, now))

	u := &model.User{Name: "Name", Email: "a@b.com", PasswordHash: "hash"}
	require.NoError(t, r.Create(context.Background(), u))
	require.Equal(t, id, u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	r := repo.NewPostgresUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := r.Create(context.Background(), &model.User{Name: "Name", Email: "a@b.com", PasswordHash: "hash"})
	require.ErrorIs(t, err, repo.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByEmail_Success(t *testing.T) {
	db, mock := newMock(t)
	r := repo.NewPostgresUserRepository(db)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(userColumns).AddRow(id.String(), "Name", "a@b.com", "hash", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, age, created_at, updated_at FROM users WHERE email = $1`)).
		WithArgs("a@b.com").WillReturnRows(rows)

	u, err := r.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Nil(t, u.Age)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	r := repo.NewPostgresUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, age, created_at, updated_at FROM users WHERE id = $1`)).
		WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrNoRows)

	_, err := r.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByIDAndToken(t *testing.T) {
	db, mock := newMock(t)
	r := repo.NewPostgresUserRepository(db)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`JOIN user_tokens t ON t.user_id = u.id`)).
		WithArgs(id, "digest").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "Name", "a@b.com", "hash", 30, now, now))

	u, err := r.FindByIDAndToken(context.Background(), id, "digest")
	require.NoError(t, err)
	require.NotNil(t, u.Age)
	require.Equal(t, 30, *u.Age)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_Update_NotFound(t *testing.T) {
	db, mock := newMock(t)
	r := repo.NewPostgresUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET name = $1, email = $2, password_hash = $3, age = $4, updated_at = now() WHERE id = $5 RETURNING updated_at`)).
		WillReturnError(sql.ErrNoRows)

	err := r.Update(context.Background(), &model.User{ID: uuid.New(), Name: "n", Email: "e@x.io", PasswordHash: "h"})
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	r := repo.NewPostgresUserRepository(db)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, r.Delete(context.Background(), id))
	require.ErrorIs(t, r.Delete(context.Background(), id), repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTokenRepository(t *testing.T) {
	db, mock := newMock(t)
	r := repo.NewPostgresTokenRepository(db)

	userID := uuid.New()
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_tokens (user_id, token_hash) VALUES ($1, $2)`)).
		WithArgs(userID, "h1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, token_hash, created_at FROM user_tokens WHERE user_id = $1 ORDER BY seq ASC`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "created_at"}).AddRow(uuid.NewString(), userID.String(), "h1", now))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_tokens WHERE user_id = $1 AND token_hash = $2`)).
		WithArgs(userID, "h1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_tokens WHERE user_id = $1`)).
		WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 3))

	ctx := context.Background()
	require.NoError(t, r.Create(ctx, userID, "h1"))

	tokens, err := r.ListByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Equal(t, "h1", tokens[0].TokenHash)

	require.NoError(t, r.Delete(ctx, userID, "h1"))
	require.NoError(t, r.DeleteAllByUserID(ctx, userID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAvatarRepository(t *testing.T) {
	db, mock := newMock(t)
	r := repo.NewPostgresAvatarRepository(db)

	userID := uuid.New()
	png := []byte{0x89, 'P', 'N', 'G'}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET avatar = $1, updated_at = now() WHERE id = $2`)).
		WithArgs(png, userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT avatar FROM users WHERE id = $1`)).
		WithArgs(userID).WillReturnRows(sqlmock.NewRows([]string{"avatar"}).AddRow(png))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET avatar = NULL, updated_at = now() WHERE id = $1`)).
		WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT avatar FROM users WHERE id = $1`)).
		WithArgs(userID).WillReturnRows(sqlmock.NewRows([]string{"avatar"}).AddRow(nil))

	ctx := context.Background()
	require.NoError(t, r.Put(ctx, userID, png))

	got, err := r.Get(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, png, got)

	require.NoError(t, r.Delete(ctx, userID))

	_, err = r.Get(ctx, userID)
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
