package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tablerohq/tablero/internal/api"
	"github.com/tablerohq/tablero/internal/models"
)

// TaskStore is the client-side task collection. Order is insertion order:
// fetch order for fetched tasks, creation order for appended ones. Every
// mutation talks to the backend first and touches the collection only on
// success, so a failed call leaves the store exactly as it was. The one
// exception is Move, which is optimistic with revert.
type TaskStore struct {
	api TaskAPI

	mu      sync.Mutex
	tasks   []models.Task
	loading bool
	lastErr error
}

// NewTaskStore creates an empty store backed by the given client.
func NewTaskStore(a TaskAPI) *TaskStore {
	return &TaskStore{api: a}
}

// Tasks returns a copy of the current collection.
func (s *TaskStore) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Loading reports whether a fetch is in flight.
func (s *TaskStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the error recorded by the most recent failed operation,
// or nil after a success.
func (s *TaskStore) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// FetchAll replaces the whole collection with the server's current
// snapshot. Concurrent fetches are not coalesced or cancelled: the last
// completion wins, even when it carries older data.
func (s *TaskStore) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	page, err := s.api.List(ctx, api.ListOptions{})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		return err
	}
	s.tasks = page.Data
	s.lastErr = nil
	return nil
}

// Create submits the draft and appends the server-returned task, with its
// server-assigned id and timestamps, to the collection.
func (s *TaskStore) Create(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	task, err := s.api.Create(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return nil, err
	}
	s.tasks = append(s.tasks, *task)
	s.lastErr = nil
	return task, nil
}

// Update applies the patch remotely, then to the matching local task,
// bumping UpdatedAt. Fields the patch does not mention keep their value. On
// failure the collection is untouched.
func (s *TaskStore) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	if _, err := s.api.Update(ctx, id, patch); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			patch.Apply(&s.tasks[i])
			s.tasks[i].UpdatedAt = time.Now()
			break
		}
	}
	s.lastErr = nil
	return nil
}

// Move changes a task's status, the board drag path. Unlike Update it is
// optimistic: the local status flips immediately so the card lands in its
// new column without waiting for the network, and flips back if the backend
// rejects the update.
func (s *TaskStore) Move(ctx context.Context, id string, status models.TaskStatus) error {
	s.mu.Lock()
	idx := -1
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("task %s not in store", id)
	}
	prev := s.tasks[idx].Status
	s.tasks[idx].Status = status
	s.mu.Unlock()

	patch := models.TaskPatch{Status: &status}
	if _, err := s.api.Update(ctx, id, patch); err != nil {
		s.mu.Lock()
		// Revert only if nothing else moved the task meanwhile.
		for i := range s.tasks {
			if s.tasks[i].ID == id && s.tasks[i].Status == status {
				s.tasks[i].Status = prev
				break
			}
		}
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].UpdatedAt = time.Now()
			break
		}
	}
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// Delete removes the task remotely, then drops exactly that task from the
// collection.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	s.lastErr = nil
	return nil
}

// ByStatus filters the collection by status. No I/O.
func (s *TaskStore) ByStatus(status models.TaskStatus) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// ByUser filters the collection by assignee. No I/O.
func (s *TaskStore) ByUser(userID string) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.AssignedTo == userID {
			out = append(out, t)
		}
	}
	return out
}

// VisibleTo filters the collection down to what the user's role may see.
func (s *TaskStore) VisibleTo(u models.User) []models.Task {
	return models.VisibleTasks(u, s.Tasks())
}

// Metrics aggregates the current collection. Pure over the snapshot.
func (s *TaskStore) Metrics(now time.Time) models.TaskMetrics {
	return ComputeMetrics(s.Tasks(), nil, now)
}
