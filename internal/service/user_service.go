package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"task-service/internal/model"
	"task-service/internal/repository"
)

// UpdateUserInput is the complete set of user fields a client may change.
// Nil fields are left as they are.
type UpdateUserInput struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=7,notpassword"`
	Age      *int    `json:"age,omitempty" validate:"omitempty,min=0"`
}

type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateUser(ctx context.Context, current *model.User, input UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, user *model.User) error
}

type userService struct {
	userRepo repository.UserRepository
	avatars  repository.AvatarRepository
	notifier Notifier
}

func NewUserService(userRepo repository.UserRepository, avatars repository.AvatarRepository, notifier Notifier) UserService {
	return &userService{userRepo: userRepo, avatars: avatars, notifier: notifier}
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies input to a copy of current; current is never modified,
// so a rejected update leaves no trace.
func (s *userService) UpdateUser(ctx context.Context, current *model.User, input UpdateUserInput) (*model.User, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalid("name is required")
		}
		input.Name = &name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		input.Email = &email
	}

	if err := validateStruct(&input); err != nil {
		return nil, err
	}

	updated := *current

	if input.Name != nil {
		updated.Name = *input.Name
	}
	if input.Email != nil {
		updated.Email = *input.Email
	}
	if input.Age != nil {
		age := *input.Age
		updated.Age = &age
	}
	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), passwordHashCost)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = string(hashedPassword)
	}

	if err := s.userRepo.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &updated, nil
}

// DeleteUser removes the account. Sessions and tasks go with it through the
// schema's cascades; an externally stored avatar is removed best-effort.
func (s *userService) DeleteUser(ctx context.Context, user *model.User) error {
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.avatars.Delete(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		slog.WarnContext(ctx, "Failed to remove avatar of deleted user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	deleted := *user
	notifyAsync(ctx, "user.deleted", func() error { return s.notifier.UserDeleted(deleted) })

	return nil
}
