// Package cache holds the client-side entity stores. Each store mirrors a
// possibly stale subset of server state: the backend stays authoritative and
// every collection is a disposable, rebuildable projection. Stores are
// explicit injectable containers, never package-level singletons, so tests
// can swap in a fake backend.
package cache

import (
	"context"
	"time"

	"github.com/tablerohq/tablero/internal/api"
	"github.com/tablerohq/tablero/internal/models"
)

// TaskAPI is the slice of the task resource client the task store needs.
// *api.TaskClient satisfies it.
type TaskAPI interface {
	List(ctx context.Context, opts api.ListOptions) (*api.TaskPage, error)
	Create(ctx context.Context, draft models.TaskDraft) (*models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

// UserAPI is the slice of the user resource client the user store needs.
type UserAPI interface {
	List(ctx context.Context) ([]models.User, error)
	Register(ctx context.Context, draft models.UserDraft) (*models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// NotificationAPI is the slice of the notification client the store needs.
type NotificationAPI interface {
	List(ctx context.Context) (*api.NotificationList, error)
	MarkRead(ctx context.Context, id string) error
}

// ComputeMetrics aggregates counts over the given collections. Pure: no
// I/O, no store state.
func ComputeMetrics(tasks []models.Task, users []models.User, now time.Time) models.TaskMetrics {
	return models.ComputeMetrics(tasks, users, now)
}
