package service

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("please authenticate")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidImage       = errors.New("please upload an image")
	ErrAvatarTooLarge     = errors.New("file too large")
)

// ValidationError reports input that was rejected before reaching storage.
// Message is safe to return to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// ParseID parses a resource id taken from a request path. Malformed ids are
// reported as ErrNotFound so they cannot be told apart from missing ones.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}
