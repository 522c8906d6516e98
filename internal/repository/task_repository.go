package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"task-service/internal/model"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, query model.TaskQuery) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
}

const (
	taskColumns = `id, description, completed, owner_id, created_at, updated_at`

	insertTaskQuery = `INSERT INTO tasks (description, completed, owner_id) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`

	selectTaskQuery = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`

	updateTaskQuery = `UPDATE tasks SET description = $1, completed = $2, updated_at = now() WHERE id = $3 AND owner_id = $4 RETURNING updated_at`

	deleteTaskQuery = `DELETE FROM tasks WHERE id = $1 AND owner_id = $2 RETURNING ` + taskColumns

	defaultTaskOrder = `created_at ASC, id ASC`
)

// sortableTaskColumns maps the sort field names accepted from clients to
// columns. Anything else keeps the default order.
var sortableTaskColumns = map[string]string{
	"createdAt":   "created_at",
	"created_at":  "created_at",
	"updatedAt":   "updated_at",
	"updated_at":  "updated_at",
	"description": "description",
	"completed":   "completed",
}

type postgresTaskRepository struct {
	db *sqlx.DB
}

func NewPostgresTaskRepository(db *sqlx.DB) TaskRepository {
	return &postgresTaskRepository{db: db}
}

func (r *postgresTaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.QueryRowxContext(ctx, insertTaskQuery, task.Description, task.Completed, task.OwnerID).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *postgresTaskRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.GetContext(ctx, &task, selectTaskQuery, id, ownerID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *postgresTaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, query model.TaskQuery) ([]model.Task, error) {
	sqlQuery, args := buildListTasksQuery(ownerID, query)

	tasks := []model.Task{}
	if err := r.db.SelectContext(ctx, &tasks, sqlQuery, args...); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *postgresTaskRepository) Update(ctx context.Context, task *model.Task) error {
	err := r.db.QueryRowxContext(ctx, updateTaskQuery, task.Description, task.Completed, task.ID, task.OwnerID).
		Scan(&task.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	return err
}

func (r *postgresTaskRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.QueryRowxContext(ctx, deleteTaskQuery, id, ownerID).StructScan(&task)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// buildListTasksQuery always scopes the query to ownerID; the caller cannot
// widen it.
func buildListTasksQuery(ownerID uuid.UUID, query model.TaskQuery) (string, []interface{}) {
	where := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	argID := 2

	if query.Completed != nil {
		where = append(where, fmt.Sprintf("completed = $%d", argID))
		args = append(args, *query.Completed)
		argID++
	}

	order := defaultTaskOrder
	if query.Sort != nil {
		if column, ok := sortableTaskColumns[query.Sort.Field]; ok {
			direction := "ASC"
			if query.Sort.Descending {
				direction = "DESC"
			}
			order = fmt.Sprintf("%s %s, id ASC", column, direction)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM tasks WHERE %s ORDER BY %s", taskColumns, strings.Join(where, " AND "), order)

	if query.Limit != nil && *query.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT $%d", argID)
		args = append(args, *query.Limit)
		argID++
	}

	if query.Skip != nil && *query.Skip > 0 {
		fmt.Fprintf(&b, " OFFSET $%d", argID)
		args = append(args, *query.Skip)
	}

	return b.String(), args
}
