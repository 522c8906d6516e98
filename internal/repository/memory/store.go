// Package memory is an in-process implementation of the repository
// interfaces. It backs local runs without PostgreSQL and the HTTP tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-service/internal/model"
	"task-service/internal/repository"
)

type taskRecord struct {
	task model.Task
	seq  int64
}

// Store holds every collection behind one mutex, so each call is atomic.
type Store struct {
	mu      sync.RWMutex
	seq     int64
	users   map[uuid.UUID]model.User
	avatars map[uuid.UUID][]byte
	tokens  []model.SessionToken
	tasks   map[uuid.UUID]taskRecord
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[uuid.UUID]model.User),
		avatars: make(map[uuid.UUID][]byte),
		tasks:   make(map[uuid.UUID]taskRecord),
		now:     time.Now,
	}
}

func (s *Store) Users() repository.UserRepository     { return userStore{s} }
func (s *Store) Tokens() repository.TokenRepository   { return tokenStore{s} }
func (s *Store) Tasks() repository.TaskRepository     { return taskStore{s} }
func (s *Store) Avatars() repository.AvatarRepository { return avatarStore{s} }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user

	return nil
}

func (r userStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (r userStore) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return &u, nil
}

func (r userStore) FindByIDAndToken(_ context.Context, id uuid.UUID, tokenHash string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	for _, t := range r.s.tokens {
		if t.UserID == id && t.TokenHash == tokenHash {
			return &u, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (r userStore) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}

	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = *user

	return nil
}

// Delete cascades to the user's tokens, tasks and avatar.
func (r userStore) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}

	delete(r.s.users, id)
	delete(r.s.avatars, id)
	r.s.tokens = removeTokens(r.s.tokens, func(t model.SessionToken) bool { return t.UserID == id })

	for taskID, rec := range r.s.tasks {
		if rec.task.OwnerID == id {
			delete(r.s.tasks, taskID)
		}
	}

	return nil
}

type tokenStore struct{ s *Store }

func (r tokenStore) Create(_ context.Context, userID uuid.UUID, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tokens = append(r.s.tokens, model.SessionToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: r.s.now(),
	})

	return nil
}

func (r tokenStore) Delete(_ context.Context, userID uuid.UUID, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tokens = removeTokens(r.s.tokens, func(t model.SessionToken) bool {
		return t.UserID == userID && t.TokenHash == tokenHash
	})

	return nil
}

func (r tokenStore) DeleteAllByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tokens = removeTokens(r.s.tokens, func(t model.SessionToken) bool { return t.UserID == userID })

	return nil
}

func (r tokenStore) ListByUserID(_ context.Context, userID uuid.UUID) ([]model.SessionToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tokens := []model.SessionToken{}
	for _, t := range r.s.tokens {
		if t.UserID == userID {
			tokens = append(tokens, t)
		}
	}

	return tokens, nil
}

func removeTokens(tokens []model.SessionToken, drop func(model.SessionToken) bool) []model.SessionToken {
	kept := tokens[:0]
	for _, t := range tokens {
		if !drop(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

type taskStore struct{ s *Store }

func (r taskStore) Create(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task.ID = uuid.New()
	task.CreatedAt = r.s.now()
	task.UpdatedAt = task.CreatedAt
	r.s.tasks[task.ID] = taskRecord{task: *task, seq: r.s.nextSeq()}

	return nil
}

func (r taskStore) FindByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.tasks[id]
	if !ok || rec.task.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}

	task := rec.task
	return &task, nil
}

func (r taskStore) ListByOwner(_ context.Context, ownerID uuid.UUID, query model.TaskQuery) ([]model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	records := make([]taskRecord, 0)
	for _, rec := range r.s.tasks {
		if rec.task.OwnerID != ownerID {
			continue
		}
		if query.Completed != nil && rec.task.Completed != *query.Completed {
			continue
		}
		records = append(records, rec)
	}

	less := taskLess(query.Sort)
	sort.Slice(records, func(i, j int) bool { return less(records[i], records[j]) })

	if query.Skip != nil && *query.Skip > 0 {
		if *query.Skip >= len(records) {
			records = records[:0]
		} else {
			records = records[*query.Skip:]
		}
	}
	if query.Limit != nil && *query.Limit > 0 && *query.Limit < len(records) {
		records = records[:*query.Limit]
	}

	tasks := make([]model.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, rec.task)
	}

	return tasks, nil
}

func (r taskStore) Update(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.tasks[task.ID]
	if !ok || rec.task.OwnerID != task.OwnerID {
		return repository.ErrNotFound
	}

	rec.task.Description = task.Description
	rec.task.Completed = task.Completed
	rec.task.UpdatedAt = r.s.now()
	r.s.tasks[task.ID] = rec

	task.UpdatedAt = rec.task.UpdatedAt
	return nil
}

func (r taskStore) DeleteByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.tasks[id]
	if !ok || rec.task.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}

	delete(r.s.tasks, id)
	task := rec.task
	return &task, nil
}

// taskLess orders like the SQL repository: by the requested field when it is
// known, then by insertion.
func taskLess(sortBy *model.TaskSort) func(a, b taskRecord) bool {
	byInsertion := func(a, b taskRecord) bool { return a.seq < b.seq }

	if sortBy == nil {
		return byInsertion
	}

	var cmp func(a, b model.Task) int
	switch sortBy.Field {
	case "createdAt", "created_at":
		cmp = func(a, b model.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "updatedAt", "updated_at":
		cmp = func(a, b model.Task) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case "description":
		cmp = func(a, b model.Task) int {
			switch {
			case a.Description < b.Description:
				return -1
			case a.Description > b.Description:
				return 1
			}
			return 0
		}
	case "completed":
		cmp = func(a, b model.Task) int {
			switch {
			case a.Completed == b.Completed:
				return 0
			case !a.Completed:
				return -1
			}
			return 1
		}
	default:
		return byInsertion
	}

	return func(a, b taskRecord) bool {
		c := cmp(a.task, b.task)
		if sortBy.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return byInsertion(a, b)
	}
}

type avatarStore struct{ s *Store }

func (r avatarStore) Put(_ context.Context, userID uuid.UUID, image []byte) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return repository.ErrNotFound
	}

	r.s.avatars[userID] = append([]byte(nil), image...)
	return nil
}

func (r avatarStore) Get(_ context.Context, userID uuid.UUID) ([]byte, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	image, ok := r.s.avatars[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return append([]byte(nil), image...), nil
}

func (r avatarStore) Delete(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return repository.ErrNotFound
	}

	delete(r.s.avatars, userID)
	return nil
}
