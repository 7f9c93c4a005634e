package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tablerohq/tablero/internal/models"
)

// UserStore is the client-side user collection. Same synchronization
// contract as the task store: backend first, local mutation only on
// success.
type UserStore struct {
	api UserAPI

	mu      sync.Mutex
	users   []models.User
	loading bool
	lastErr error
}

// NewUserStore creates an empty store backed by the given client.
func NewUserStore(a UserAPI) *UserStore {
	return &UserStore{api: a}
}

// Users returns a copy of the current collection.
func (s *UserStore) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out
}

// Loading reports whether a fetch is in flight.
func (s *UserStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the most recent operation failure, or nil.
func (s *UserStore) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// FetchAll replaces the collection with the server snapshot.
func (s *UserStore) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	users, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		return err
	}
	s.users = users
	s.lastErr = nil
	return nil
}

// Create registers the account and appends the server-returned user.
func (s *UserStore) Create(ctx context.Context, draft models.UserDraft) (*models.User, error) {
	user, err := s.api.Register(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return nil, err
	}
	s.users = append(s.users, *user)
	s.lastErr = nil
	return user, nil
}

// Update applies the patch remotely, then to the matching local user.
func (s *UserStore) Update(ctx context.Context, id string, patch models.UserPatch) error {
	if _, err := s.api.Update(ctx, id, patch); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			patch.Apply(&s.users[i])
			break
		}
	}
	s.lastErr = nil
	return nil
}

// Delete removes the user remotely, then locally. No cascade: tasks
// assigned to the user stay in the task store until its next fetch.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			break
		}
	}
	s.lastErr = nil
	return nil
}

// ByRole filters the collection by role. No I/O.
func (s *UserStore) ByRole(role models.Role) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// Get returns the user with the given id, or nil.
func (s *UserStore) Get(id string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			v := u
			return &v
		}
	}
	return nil
}

// Metrics aggregates the current collection together with the given task
// snapshot.
func (s *UserStore) Metrics(tasks []models.Task, now time.Time) models.TaskMetrics {
	return ComputeMetrics(tasks, s.Users(), now)
}
