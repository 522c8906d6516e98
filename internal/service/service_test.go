package service_test

import (
	"sync"
	"testing"
	"time"

	"task-service/internal/jwt"
	"task-service/internal/model"
	"task-service/internal/repository/memory"
	"task-service/internal/service"
)

type recordingNotifier struct {
	mu      sync.Mutex
	created []model.User
	deleted []model.User
	err     error
}

func (n *recordingNotifier) UserCreated(user model.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, user)
	return n.err
}

func (n *recordingNotifier) UserDeleted(user model.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, user)
	return n.err
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.created), len(n.deleted)
}

type fixture struct {
	store    *memory.Store
	signer   *jwt.Signer
	notifier *recordingNotifier
	auth     service.AuthService
	users    service.UserService
	tasks    service.TaskService
	avatars  service.AvatarService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	signer := jwt.NewSigner([]byte("test-secret"), time.Hour)
	notifier := &recordingNotifier{}

	return &fixture{
		store:    store,
		signer:   signer,
		notifier: notifier,
		auth:     service.NewAuthService(store.Users(), store.Tokens(), signer, notifier),
		users:    service.NewUserService(store.Users(), store.Avatars(), notifier),
		tasks:    service.NewTaskService(store.Tasks()),
		avatars:  service.NewAvatarService(store.Avatars()),
	}
}
