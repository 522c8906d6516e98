package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"task-service/internal/events"
	"task-service/internal/mailer"
)

const (
	maxRetries = 3
	dlqSubject = "notification.email.failed"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

type Worker struct {
	conn       publisher
	mailer     mailer.Mailer
	retryDelay time.Duration
}

func New(conn publisher, m mailer.Mailer) *Worker {
	return &Worker{conn: conn, mailer: m, retryDelay: 2 * time.Second}
}

// Start subscribes the worker to the user lifecycle subjects.
func Start(nc *nats.Conn, m mailer.Mailer) (*Worker, error) {
	w := New(nc, m)

	for _, subject := range []string{events.SubjectUserCreated, events.SubjectUserDeleted} {
		if _, err := nc.Subscribe(subject, w.handleMessage); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", subject, err)
		}
		slog.Info("Notification worker listening", slog.String("subject", subject))
	}

	return w, nil
}

func (w *Worker) handleMessage(msg *nats.Msg) {
	w.Handle(context.Background(), msg.Subject, msg.Data)
}

// Handle renders and sends the email for one event. Sending is retried;
// after the last attempt the raw event goes to the dead-letter subject.
func (w *Worker) Handle(ctx context.Context, subject string, data []byte) {
	var event events.UserEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal user event", slog.String("error", err.Error()))
		return
	}

	email, ok := RenderEmail(subject, event)
	if !ok {
		slog.WarnContext(ctx, "Ignoring event on unknown subject", slog.String("subject", subject))
		return
	}

	var sendErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		sendErr = w.mailer.Send(ctx, email)
		if sendErr == nil {
			slog.InfoContext(ctx, "Notification email sent",
				slog.String("subject", subject),
				slog.String("user_id", event.UserID.String()),
				slog.Int("attempt", attempt),
			)
			return
		}

		slog.WarnContext(ctx, "Failed to send notification email",
			slog.Int("attempt", attempt),
			slog.String("error", sendErr.Error()),
		)
		if attempt < maxRetries {
			time.Sleep(w.retryDelay)
		}
	}

	slog.ErrorContext(ctx, "Giving up on notification email",
		slog.String("user_id", event.UserID.String()),
		slog.String("error", sendErr.Error()),
	)

	if err := w.conn.Publish(dlqSubject, data); err != nil {
		slog.ErrorContext(ctx, "Failed to publish to DLQ", slog.String("dlq", dlqSubject), slog.String("error", err.Error()))
	}
}

func RenderEmail(subject string, event events.UserEvent) (mailer.Message, bool) {
	switch subject {
	case events.SubjectUserCreated:
		return mailer.Message{
			To:      event.Email,
			Subject: "Welcome to the app!",
			Body:    fmt.Sprintf("Welcome %s, let me know how you get along with the app.", event.Name),
		}, true
	case events.SubjectUserDeleted:
		return mailer.Message{
			To:      event.Email,
			Subject: "Sorry to see you go",
			Body: fmt.Sprintf("Goodbye %s, is there anything we could have done to keep you on board?\n"+
				"Hope to see you back soon.", event.Name),
		}, true
	}
	return mailer.Message{}, false
}
