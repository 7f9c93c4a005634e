package tui

import "github.com/tablerohq/tablero/internal/models"

// TaskModal is the coordination state for the task edit dialog. Decoupled
// from the page views so any of them can raise it. A nil editing pointer
// means create mode.
type TaskModal struct {
	open    bool
	editing *models.Task
}

// Open raises the modal. Pass nil for create mode.
func (m *TaskModal) Open(task *models.Task) {
	m.open = true
	m.editing = task
}

// Close resets both the flag and the editing pointer.
func (m *TaskModal) Close() {
	m.open = false
	m.editing = nil
}

// IsOpen reports whether the dialog is showing.
func (m *TaskModal) IsOpen() bool { return m.open }

// Editing returns the task being edited, or nil in create mode.
func (m *TaskModal) Editing() *models.Task { return m.editing }

// UserModal is the coordination state for the user edit dialog, independent
// of the task modal.
type UserModal struct {
	open    bool
	editing *models.User
}

// Open raises the modal. Pass nil for create mode.
func (m *UserModal) Open(user *models.User) {
	m.open = true
	m.editing = user
}

// Close resets both the flag and the editing pointer.
func (m *UserModal) Close() {
	m.open = false
	m.editing = nil
}

// IsOpen reports whether the dialog is showing.
func (m *UserModal) IsOpen() bool { return m.open }

// Editing returns the user being edited, or nil in create mode.
func (m *UserModal) Editing() *models.User { return m.editing }
