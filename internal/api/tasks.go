package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tablerohq/tablero/internal/models"
)

// TaskClient wraps the /tasks resource.
type TaskClient struct {
	c *Client
}

// TaskPage is the paged envelope GET /tasks returns.
type TaskPage struct {
	Data     []models.Task `json:"data"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// ListOptions narrows a task listing. Zero values mean "no filter" and
// "server default page".
type ListOptions struct {
	Status   models.TaskStatus
	Page     int
	PageSize int
}

// List fetches a page of tasks.
func (tc *TaskClient) List(ctx context.Context, opts ListOptions) (*TaskPage, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page TaskPage
	if err := tc.c.do(ctx, http.MethodGet, path, nil, &page, "failed to fetch tasks"); err != nil {
		return nil, err
	}
	if page.Data == nil {
		return nil, fmt.Errorf("%w: tasks page missing data", ErrMalformedResponse)
	}
	return &page, nil
}

// Get fetches a single task.
func (tc *TaskClient) Get(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := tc.c.do(ctx, http.MethodGet, "/tasks/"+id, nil, &task, "failed to fetch task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create submits a draft and returns the server-assigned task.
func (tc *TaskClient) Create(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	var task models.Task
	if err := tc.c.do(ctx, http.MethodPost, "/tasks", draft, &task, "failed to create task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial update and returns the updated task.
func (tc *TaskClient) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := tc.c.do(ctx, http.MethodPut, "/tasks/"+id, patch, &task, "failed to update task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task.
func (tc *TaskClient) Delete(ctx context.Context, id string) error {
	return tc.c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil, "failed to delete task")
}

// Metrics fetches the server-side task aggregates.
func (tc *TaskClient) Metrics(ctx context.Context) (*models.TaskMetrics, error) {
	var m models.TaskMetrics
	if err := tc.c.do(ctx, http.MethodGet, "/tasks/metrics", nil, &m, "failed to fetch metrics"); err != nil {
		return nil, err
	}
	return &m, nil
}
