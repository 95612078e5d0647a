// Package memstore holds in-memory stand-ins for the Postgres repositories.
// They return the same sentinel errors so services behave identically.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tugas-go/internal/models"
	"tugas-go/internal/repository"
)

// Store keeps users and tasks; Users() and Tasks() expose the two halves.
type Store struct {
	mu    sync.Mutex
	users map[string]models.User
	tasks map[string]models.Task
	seq   int64

	// FailWith, when set, is returned by every call.
	FailWith error
}

func New() *Store {
	return &Store{
		users: make(map[string]models.User),
		tasks: make(map[string]models.Task),
	}
}

func (s *Store) Users() *Users { return &Users{s} }
func (s *Store) Tasks() *Tasks { return &Tasks{s} }

// tick returns strictly increasing timestamps so ordering is stable.
func (s *Store) tick() time.Time {
	s.seq++
	return time.Unix(1_700_000_000+s.seq, 0).UTC()
}

type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, user *models.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	for _, existing := range s.users {
		if existing.Email == email {
			found := existing
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *Users) FindByID(_ context.Context, id string) (*models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	existing, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &existing, nil
}

func (u *Users) Update(_ context.Context, user *models.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	current, ok := s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range s.users {
		if id != user.ID && other.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = s.tick()
	s.users[user.ID] = *user
	return nil
}

// Delete removes the user row only; tasks are cascaded like the FK does.
func (u *Users) Delete(_ context.Context, id string) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	for tid, t := range s.tasks {
		if t.UserID == id {
			delete(s.tasks, tid)
		}
	}
	return nil
}

type Tasks struct{ s *Store }

func (t *Tasks) Create(_ context.Context, task *models.Task) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.users[task.UserID]; !ok {
		return repository.ErrOwnerNotFound
	}
	task.ID = uuid.NewString()
	task.CreatedAt = s.tick()
	task.UpdatedAt = task.CreatedAt
	s.tasks[task.ID] = *task
	return nil
}

func (t *Tasks) FindByID(_ context.Context, id string) (*models.Task, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	existing, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &existing, nil
}

func (t *Tasks) ListByOwner(_ context.Context, ownerID string) ([]models.Task, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	out := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID == ownerID {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *Tasks) Update(_ context.Context, task *models.Task) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	current, ok := s.tasks[task.ID]
	if !ok {
		return repository.ErrNotFound
	}
	task.UserID = current.UserID
	task.CreatedAt = current.CreatedAt
	task.UpdatedAt = s.tick()
	s.tasks[task.ID] = *task
	return nil
}

func (t *Tasks) Delete(_ context.Context, id string) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (t *Tasks) DeleteByOwner(_ context.Context, ownerID string) ([]string, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var ids []string
	for id, task := range s.tasks {
		if task.UserID == ownerID {
			ids = append(ids, id)
			delete(s.tasks, id)
		}
	}
	return ids, nil
}

// ErrBoom is a convenient FailWith value.
var ErrBoom = errors.New("store unavailable")
