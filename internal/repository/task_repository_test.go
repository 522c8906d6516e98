package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"task-service/internal/model"
)

var taskRowColumns = []string{"id", "description", "completed", "owner_id", "created_at", "updated_at"}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestBuildListTasksQuery(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name     string
		query    model.TaskQuery
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "owner only",
			query:    model.TaskQuery{},
			wantSQL:  "SELECT " + taskColumns + " FROM tasks WHERE owner_id = $1 ORDER BY created_at ASC, id ASC",
			wantArgs: []interface{}{owner},
		},
		{
			name:     "completed filter with paging",
			query:    model.TaskQuery{Completed: boolPtr(true), Limit: intPtr(2), Skip: intPtr(4)},
			wantSQL:  "SELECT " + taskColumns + " FROM tasks WHERE owner_id = $1 AND completed = $2 ORDER BY created_at ASC, id ASC LIMIT $3 OFFSET $4",
			wantArgs: []interface{}{owner, true, 2, 4},
		},
		{
			name:     "sort descending",
			query:    model.TaskQuery{Sort: &model.TaskSort{Field: "createdAt", Descending: true}},
			wantSQL:  "SELECT " + taskColumns + " FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC, id ASC",
			wantArgs: []interface{}{owner},
		},
		{
			name:     "unknown sort field keeps default order",
			query:    model.TaskQuery{Sort: &model.TaskSort{Field: "owner_id; DROP TABLE tasks"}},
			wantSQL:  "SELECT " + taskColumns + " FROM tasks WHERE owner_id = $1 ORDER BY created_at ASC, id ASC",
			wantArgs: []interface{}{owner},
		},
		{
			name:     "zero limit and skip are ignored",
			query:    model.TaskQuery{Limit: intPtr(0), Skip: intPtr(0)},
			wantSQL:  "SELECT " + taskColumns + " FROM tasks WHERE owner_id = $1 ORDER BY created_at ASC, id ASC",
			wantArgs: []interface{}{owner},
		},
		{
			name:     "skip without limit",
			query:    model.TaskQuery{Completed: boolPtr(false), Skip: intPtr(1)},
			wantSQL:  "SELECT " + taskColumns + " FROM tasks WHERE owner_id = $1 AND completed = $2 ORDER BY created_at ASC, id ASC OFFSET $3",
			wantArgs: []interface{}{owner, false, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs := buildListTasksQuery(owner, tt.query)
			require.Equal(t, tt.wantSQL, gotSQL)
			require.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func newTaskRepo(t *testing.T) (TaskRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresTaskRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresTaskRepository_Create(t *testing.T) {
	r, mock := newTaskRepo(t)

	id := uuid.New()
	owner := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(insertTaskQuery)).
		WithArgs("write report", false, owner).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), now, now))

	task := &model.Task{Description: "write report", OwnerID: owner}
	require.NoError(t, r.Create(context.Background(), task))
	require.Equal(t, id, task.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskRepository_FindByIDAndOwner_NotFound(t *testing.T) {
	r, mock := newTaskRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectTaskQuery)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := r.FindByIDAndOwner(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskRepository_ListByOwner(t *testing.T) {
	r, mock := newTaskRepo(t)

	owner := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(taskRowColumns).
		AddRow(uuid.NewString(), "a", true, owner.String(), now, now).
		AddRow(uuid.NewString(), "b", true, owner.String(), now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE owner_id = $1 AND completed = $2")).
		WithArgs(owner, true).
		WillReturnRows(rows)

	tasks, err := r.ListByOwner(context.Background(), owner, model.TaskQuery{Completed: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, owner, tasks[0].OwnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskRepository_Update(t *testing.T) {
	r, mock := newTaskRepo(t)

	task := &model.Task{ID: uuid.New(), OwnerID: uuid.New(), Description: "x", Completed: true}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(updateTaskQuery)).
		WithArgs("x", true, task.ID, task.OwnerID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(regexp.QuoteMeta(updateTaskQuery)).
		WillReturnError(sql.ErrNoRows)

	require.NoError(t, r.Update(context.Background(), task))
	require.ErrorIs(t, r.Update(context.Background(), task), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskRepository_DeleteByIDAndOwner(t *testing.T) {
	r, mock := newTaskRepo(t)

	id := uuid.New()
	owner := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(deleteTaskQuery)).
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(id.String(), "gone", false, owner.String(), now, now))
	mock.ExpectQuery(regexp.QuoteMeta(deleteTaskQuery)).
		WithArgs(id, owner).
		WillReturnError(sql.ErrNoRows)

	task, err := r.DeleteByIDAndOwner(context.Background(), id, owner)
	require.NoError(t, err)
	require.Equal(t, "gone", task.Description)

	_, err = r.DeleteByIDAndOwner(context.Background(), id, owner)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
