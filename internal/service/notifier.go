package service

import (
	"context"
	"log/slog"

	"task-service/internal/model"
)

// Notifier hands account lifecycle events to the notification pipeline.
type Notifier interface {
	UserCreated(user model.User) error
	UserDeleted(user model.User) error
}

// notifyAsync runs send detached from the request. A failure is logged and
// goes no further.
func notifyAsync(ctx context.Context, event string, send func() error) {
	ctx = context.WithoutCancel(ctx)

	go func() {
		if err := send(); err != nil {
			slog.ErrorContext(ctx, "Failed to dispatch notification",
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
		}
	}()
}
