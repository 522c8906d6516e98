package service

import (
	"context"
	"errors"
	"io"
	"regexp"

	"github.com/google/uuid"

	"task-service/internal/imaging"
	"task-service/internal/repository"
)

const (
	AvatarMaxBytes = 1_000_000
	avatarSide     = 250
)

var avatarFilename = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)

type AvatarService interface {
	Upload(ctx context.Context, userID uuid.UUID, filename string, size int64, r io.Reader) error
	Delete(ctx context.Context, userID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

type avatarService struct {
	store repository.AvatarRepository
}

func NewAvatarService(store repository.AvatarRepository) AvatarService {
	return &avatarService{store: store}
}

// Upload normalizes the image to a 250x250 PNG and replaces the user's
// current avatar.
func (s *avatarService) Upload(ctx context.Context, userID uuid.UUID, filename string, size int64, r io.Reader) error {
	if !avatarFilename.MatchString(filename) {
		return ErrInvalidImage
	}
	if size > AvatarMaxBytes {
		return ErrAvatarTooLarge
	}

	image, err := imaging.ToPNG(io.LimitReader(r, AvatarMaxBytes+1), avatarSide, avatarSide)
	if err != nil {
		return ErrInvalidImage
	}

	return translateNotFound(s.store.Put(ctx, userID, image))
}

func (s *avatarService) Delete(ctx context.Context, userID uuid.UUID) error {
	err := s.store.Delete(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func (s *avatarService) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	image, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return image, nil
}
