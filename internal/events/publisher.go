package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"task-service/internal/model"
)

const (
	SubjectUserCreated = "user.created"
	SubjectUserDeleted = "user.deleted"
)

// UserEvent is the payload published on the user lifecycle subjects.
type UserEvent struct {
	EventType  string    `json:"event_type"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewUserEvent(subject string, user model.User) UserEvent {
	return UserEvent{
		EventType:  subject,
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		OccurredAt: time.Now().UTC(),
	}
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// NatsPublisher implements service.Notifier on top of a NATS connection.
type NatsPublisher struct {
	conn publisher
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{conn: nc}
}

func (p *NatsPublisher) UserCreated(user model.User) error {
	return p.publish(SubjectUserCreated, user)
}

func (p *NatsPublisher) UserDeleted(user model.User) error {
	return p.publish(SubjectUserDeleted, user)
}

func (p *NatsPublisher) publish(subject string, user model.User) error {
	eventJSON, err := json.Marshal(NewUserEvent(subject, user))
	if err != nil {
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		return err
	}

	slog.Debug("Published user event", slog.String("subject", subject), slog.String("user_id", user.ID.String()))

	return nil
}

// NoopNotifier drops every event. It is used when NATS is not configured.
type NoopNotifier struct{}

func (NoopNotifier) UserCreated(model.User) error { return nil }
func (NoopNotifier) UserDeleted(model.User) error { return nil }
