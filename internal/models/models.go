// Package models defines the core domain types for Tablero.
package models

import "time"

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists the workflow states in board-column order.
// Cancelled is a terminal side-state and gets no column.
var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusCompleted,
}

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusInReview, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskType classifies the kind of engagement a task belongs to.
type TaskType string

const (
	TaskTypeDevelopment TaskType = "development"
	TaskTypeAgent       TaskType = "agent"
	TaskTypeSupport     TaskType = "support"
	TaskTypePQR         TaskType = "pqr"
	TaskTypeConsulting  TaskType = "consulting"
	TaskTypeTraining    TaskType = "training"
)

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeDevelopment, TaskTypeAgent, TaskTypeSupport, TaskTypePQR, TaskTypeConsulting, TaskTypeTraining:
		return true
	}
	return false
}

// TaskPriority represents how urgent a task is.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task represents a unit of client work.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Type           TaskType     `json:"type"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	AssignedTo     string       `json:"assigned_to"`
	AssignedBy     string       `json:"assigned_by"`
	Client         string       `json:"client,omitempty"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	EndDate        *time.Time   `json:"end_date,omitempty"`
	EstimatedHours float64      `json:"estimated_hours"`
	ActualHours    float64      `json:"actual_hours"`
	Tags           []string     `json:"tags,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Overdue reports whether the task's due date has passed without completion.
func (t Task) Overdue(now time.Time) bool {
	if t.EndDate == nil {
		return false
	}
	return t.EndDate.Before(now) && t.Status != TaskStatusCompleted
}

// Role is the sole authorization axis in Tablero.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleCollaborator Role = "collaborator"
	RoleClient       Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCollaborator, RoleClient:
		return true
	}
	return false
}

// UserStatus marks whether an account may sign in.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User represents an account in the consultancy.
type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Department string     `json:"department,omitempty"`
	Company    string     `json:"company,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Status     UserStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Notification is a message delivered to a user.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	IsRead    WireBool  `json:"is_read"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskMetrics aggregates counts derived from the task and user collections.
type TaskMetrics struct {
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	InProgressTasks int     `json:"in_progress_tasks"`
	PendingTasks    int     `json:"pending_tasks"`
	OverdueTasks    int     `json:"overdue_tasks"`
	TotalUsers      int     `json:"total_users"`
	ActiveUsers     int     `json:"active_users"`
	CompletionRate  float64 `json:"completion_rate"`
}

// DashboardStats is the aggregate report served by /dashboard/stats.
type DashboardStats struct {
	TasksByStatus   map[TaskStatus]int   `json:"tasks_by_status"`
	TasksByPriority map[TaskPriority]int `json:"tasks_by_priority"`
	UsersByRole     map[Role]int         `json:"users_by_role"`
	TotalTasks      int                  `json:"total_tasks"`
	TotalUsers      int                  `json:"total_users"`
}
