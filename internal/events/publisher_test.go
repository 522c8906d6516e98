package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"task-service/internal/model"
)

type capturedMessage struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []capturedMessage
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, capturedMessage{subject: subject, data: data})
	return nil
}

func TestNatsPublisher_UserCreated(t *testing.T) {
	conn := &fakeConn{}
	p := &NatsPublisher{conn: conn}
	user := model.User{ID: uuid.New(), Name: "Test", Email: "test@example.com", PasswordHash: "secret-hash"}

	require.NoError(t, p.UserCreated(user))
	require.Len(t, conn.messages, 1)
	require.Equal(t, SubjectUserCreated, conn.messages[0].subject)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(conn.messages[0].data, &decoded))
	require.Equal(t, "user.created", decoded["event_type"])
	require.Equal(t, "test@example.com", decoded["email"])
	require.NotContains(t, string(conn.messages[0].data), "secret-hash")
}

func TestNatsPublisher_UserDeleted(t *testing.T) {
	conn := &fakeConn{}
	p := &NatsPublisher{conn: conn}

	require.NoError(t, p.UserDeleted(model.User{ID: uuid.New(), Name: "Gone"}))
	require.Equal(t, SubjectUserDeleted, conn.messages[0].subject)
}

func TestNatsPublisher_PublishError(t *testing.T) {
	p := &NatsPublisher{conn: &fakeConn{err: errors.New("nats: connection closed")}}
	require.Error(t, p.UserCreated(model.User{ID: uuid.New()}))
}
