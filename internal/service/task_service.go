package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"task-service/internal/model"
	"task-service/internal/repository"
)

type CreateTaskInput struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskInput is the complete set of task fields a client may change.
type UpdateTaskInput struct {
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type TaskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*model.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, query model.TaskQuery) ([]model.Task, error)
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*model.Task, error)
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error)
}

type taskService struct {
	taskRepo repository.TaskRepository
}

func NewTaskService(taskRepo repository.TaskRepository) TaskService {
	return &taskService{taskRepo: taskRepo}
}

func (s *taskService) Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*model.Task, error) {
	input.Description = strings.TrimSpace(input.Description)
	if err := validateStruct(&input); err != nil {
		return nil, err
	}

	task := &model.Task{
		Description: input.Description,
		Completed:   input.Completed,
		OwnerID:     ownerID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *taskService) List(ctx context.Context, ownerID uuid.UUID, query model.TaskQuery) ([]model.Task, error) {
	if query.Limit != nil && *query.Limit < 0 {
		return nil, invalid("limit must be a non-negative integer")
	}
	if query.Skip != nil && *query.Skip < 0 {
		return nil, invalid("skip must be a non-negative integer")
	}

	return s.taskRepo.ListByOwner(ctx, ownerID, query)
}

func (s *taskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.FindByIDAndOwner(ctx, taskID, ownerID)
	return task, translateNotFound(err)
}

// Update validates the whole input before touching storage. Concurrent
// updates of one task are last-write-wins.
func (s *taskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*model.Task, error) {
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, invalid("description is required")
		}
		input.Description = &description
	}

	task, err := s.taskRepo.FindByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, translateNotFound(err)
	}

	return task, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.DeleteByIDAndOwner(ctx, taskID, ownerID)
	return task, translateNotFound(err)
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
