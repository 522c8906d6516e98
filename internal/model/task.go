package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type TaskSort struct {
	Field      string
	Descending bool
}

// TaskQuery holds the optional listing options of a task query. A nil field
// means the option is absent.
type TaskQuery struct {
	Completed *bool
	Sort      *TaskSort
	Limit     *int
	Skip      *int
}
