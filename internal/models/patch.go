package models

import "time"

// TaskDraft carries the caller-settable fields for task creation. The server
// assigns id, status, timestamps and actual hours.
type TaskDraft struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Type           TaskType     `json:"type"`
	Priority       TaskPriority `json:"priority"`
	AssignedTo     string       `json:"assigned_to"`
	AssignedBy     string       `json:"assigned_by"`
	Client         string       `json:"client,omitempty"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	EndDate        *time.Time   `json:"end_date,omitempty"`
	EstimatedHours float64      `json:"estimated_hours"`
	Tags           []string     `json:"tags,omitempty"`
}

// TaskPatch is a partial task update. Nil fields are left untouched, so a
// patch can never drop a field it does not mention.
type TaskPatch struct {
	Title          *string       `json:"title,omitempty"`
	Description    *string       `json:"description,omitempty"`
	Type           *TaskType     `json:"type,omitempty"`
	Status         *TaskStatus   `json:"status,omitempty"`
	Priority       *TaskPriority `json:"priority,omitempty"`
	AssignedTo     *string       `json:"assigned_to,omitempty"`
	Client         *string       `json:"client,omitempty"`
	StartDate      *time.Time    `json:"start_date,omitempty"`
	EndDate        *time.Time    `json:"end_date,omitempty"`
	EstimatedHours *float64      `json:"estimated_hours,omitempty"`
	ActualHours    *float64      `json:"actual_hours,omitempty"`
	Tags           []string      `json:"tags,omitempty"`
}

// Apply overwrites the fields the patch mentions and leaves the rest alone.
// UpdatedAt is the caller's concern.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.Client != nil {
		t.Client = *p.Client
	}
	if p.StartDate != nil {
		t.StartDate = p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = p.EndDate
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if p.ActualHours != nil {
		t.ActualHours = *p.ActualHours
	}
	if p.Tags != nil {
		t.Tags = p.Tags
	}
}

// UserDraft carries the fields for account registration.
type UserDraft struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	Company    string `json:"company,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// UserPatch is a partial user update with the same nil-means-keep contract
// as TaskPatch.
type UserPatch struct {
	Name       *string     `json:"name,omitempty"`
	Email      *string     `json:"email,omitempty"`
	Role       *Role       `json:"role,omitempty"`
	Department *string     `json:"department,omitempty"`
	Company    *string     `json:"company,omitempty"`
	Phone      *string     `json:"phone,omitempty"`
	Status     *UserStatus `json:"status,omitempty"`
}

// Apply overwrites the fields the patch mentions and leaves the rest alone.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Company != nil {
		u.Company = *p.Company
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
}
