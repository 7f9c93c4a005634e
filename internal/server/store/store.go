// Package store provides SQLite-backed persistence for the Tablero daemon.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tablerohq/tablero/internal/models"
	_ "modernc.org/sqlite"
)

// Store provides access to the Tablero SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		department TEXT,
		company TEXT,
		phone TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		priority TEXT NOT NULL DEFAULT 'medium',
		assigned_to TEXT,
		assigned_by TEXT,
		client TEXT,
		start_date DATETIME,
		end_date DATETIME,
		estimated_hours REAL NOT NULL DEFAULT 0,
		actual_hours REAL NOT NULL DEFAULT 0,
		tags TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'info',
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activity (
		id TEXT PRIMARY KEY,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		detail TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to);
	CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// HashPassword returns the stored form of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// --- User Operations ---

// CreateUser inserts a new account from a registration draft.
func (s *Store) CreateUser(draft models.UserDraft) (*models.User, error) {
	now := time.Now().UTC()
	user := &models.User{
		ID:         uuid.New().String(),
		Name:       draft.Name,
		Email:      strings.ToLower(strings.TrimSpace(draft.Email)),
		Role:       draft.Role,
		Department: draft.Department,
		Company:    draft.Company,
		Phone:      draft.Phone,
		Status:     models.UserActive,
		CreatedAt:  now,
	}

	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, password_hash, role, department, company, phone, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, HashPassword(draft.Password), user.Role,
		user.Department, user.Company, user.Phone, user.Status, user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("email %s already registered", user.Email)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func scanUser(scan func(dest ...interface{}) error) (*models.User, error) {
	var u models.User
	var department, company, phone sql.NullString
	if err := scan(&u.ID, &u.Name, &u.Email, &u.Role, &department, &company, &phone, &u.Status, &u.CreatedAt); err != nil {
		return nil, err
	}
	if department.Valid {
		u.Department = department.String
	}
	if company.Valid {
		u.Company = company.String
	}
	if phone.Valid {
		u.Phone = phone.String
	}
	return &u, nil
}

const userColumns = `id, name, email, role, department, company, phone, status, created_at`

// GetUser retrieves a user by ID. Returns nil when missing.
func (s *Store) GetUser(id string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email together with the password hash.
func (s *Store) GetUserByEmail(email string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var hash string
	row := s.db.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, email)
	if err := row.Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("query user: %w", err)
	}

	row = s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row.Scan)
	if err != nil {
		return nil, "", fmt.Errorf("query user: %w", err)
	}
	return u, hash, nil
}

// ListUsers returns all users in creation order.
func (s *Store) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser applies a partial update and returns the updated user.
func (s *Store) UpdateUser(id string, patch models.UserPatch) (*models.User, error) {
	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	patch.Apply(u)

	_, err = s.db.Exec(
		`UPDATE users SET name = ?, email = ?, role = ?, department = ?, company = ?, phone = ?, status = ? WHERE id = ?`,
		u.Name, u.Email, u.Role, u.Department, u.Company, u.Phone, u.Status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces a user's password hash.
func (s *Store) UpdatePassword(id, password string) error {
	_, err := s.db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, HashPassword(password), id)
	return err
}

// DeleteUser removes a user. Tasks keep their dangling assignee ids; there
// is deliberately no cascade.
func (s *Store) DeleteUser(id string) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	return err
}

// --- Task Operations ---

const taskColumns = `id, title, description, type, status, priority, assigned_to, assigned_by, client,
	start_date, end_date, estimated_hours, actual_hours, tags, created_at, updated_at`

// CreateTask inserts a new task from a draft. The store assigns id, pending
// status and timestamps.
func (s *Store) CreateTask(draft models.TaskDraft) (*models.Task, error) {
	now := time.Now().UTC()
	task := &models.Task{
		ID:             uuid.New().String(),
		Title:          draft.Title,
		Description:    draft.Description,
		Type:           draft.Type,
		Status:         models.TaskStatusPending,
		Priority:       draft.Priority,
		AssignedTo:     draft.AssignedTo,
		AssignedBy:     draft.AssignedBy,
		Client:         draft.Client,
		StartDate:      draft.StartDate,
		EndDate:        draft.EndDate,
		EstimatedHours: draft.EstimatedHours,
		Tags:           draft.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tagsJSON, _ := json.Marshal(task.Tags)
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, title, description, type, status, priority, assigned_to, assigned_by, client,
			start_date, end_date, estimated_hours, actual_hours, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Description, task.Type, task.Status, task.Priority,
		task.AssignedTo, task.AssignedBy, task.Client, task.StartDate, task.EndDate,
		task.EstimatedHours, task.ActualHours, string(tagsJSON), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func scanTask(scan func(dest ...interface{}) error) (*models.Task, error) {
	var t models.Task
	var description, assignedTo, assignedBy, client, tags sql.NullString
	var startDate, endDate sql.NullTime
	err := scan(&t.ID, &t.Title, &description, &t.Type, &t.Status, &t.Priority,
		&assignedTo, &assignedBy, &client, &startDate, &endDate,
		&t.EstimatedHours, &t.ActualHours, &tags, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = description.String
	}
	if assignedTo.Valid {
		t.AssignedTo = assignedTo.String
	}
	if assignedBy.Valid {
		t.AssignedBy = assignedBy.String
	}
	if client.Valid {
		t.Client = client.String
	}
	if startDate.Valid {
		v := startDate.Time
		t.StartDate = &v
	}
	if endDate.Valid {
		v := endDate.Time
		t.EndDate = &v
	}
	if tags.Valid && tags.String != "" && tags.String != "null" {
		json.Unmarshal([]byte(tags.String), &t.Tags)
	}
	return &t, nil
}

// GetTask retrieves a task by ID. Returns nil when missing.
func (s *Store) GetTask(id string) (*models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return t, nil
}

// ListTasks returns one page of tasks in creation order, optionally
// filtered by status, together with the total matching count.
func (s *Store) ListTasks(status models.TaskStatus, page, pageSize int) ([]models.Task, int, error) {
	where := ""
	var args []interface{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, status)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at`
	if pageSize > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, pageSize, (page-1)*pageSize)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, total, rows.Err()
}

// UpdateTask applies a partial update, bumps updated_at and returns the
// updated task. Returns nil when the task does not exist.
func (s *Store) UpdateTask(id string, patch models.TaskPatch) (*models.Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	patch.Apply(t)
	t.UpdatedAt = time.Now().UTC()

	tagsJSON, _ := json.Marshal(t.Tags)
	_, err = s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, type = ?, status = ?, priority = ?, assigned_to = ?,
			client = ?, start_date = ?, end_date = ?, estimated_hours = ?, actual_hours = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, t.Type, t.Status, t.Priority, t.AssignedTo,
		t.Client, t.StartDate, t.EndDate, t.EstimatedHours, t.ActualHours, string(tagsJSON), t.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	return err
}

// --- Notification Operations ---

// CreateNotification inserts a notification for a user.
func (s *Store) CreateNotification(userID, message, kind string) (*models.Notification, error) {
	now := time.Now().UTC()
	n := &models.Notification{
		ID:        uuid.New().String(),
		Message:   message,
		Type:      kind,
		CreatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO notifications (id, user_id, message, type, is_read, created_at) VALUES (?, ?, ?, ?, 0, ?)`,
		n.ID, userID, n.Message, n.Type, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns a user's notifications, newest first, with the
// unread count.
func (s *Store) ListNotifications(userID string) ([]models.Notification, int, error) {
	rows, err := s.db.Query(
		`SELECT id, message, type, is_read, created_at FROM notifications WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	unread := 0
	for rows.Next() {
		var n models.Notification
		var isRead int
		if err := rows.Scan(&n.ID, &n.Message, &n.Type, &isRead, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		n.IsRead = models.WireBool(isRead != 0)
		if !n.IsRead.Bool() {
			unread++
		}
		out = append(out, n)
	}
	return out, unread, rows.Err()
}

// MarkNotificationRead flags one of the user's notifications as read.
// Reports whether a row matched.
func (s *Store) MarkNotificationRead(id, userID string) (bool, error) {
	res, err := s.db.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Activity Log ---

// AppendActivity records one line in the activity log.
func (s *Store) AppendActivity(actor, action, detail string) error {
	_, err := s.db.Exec(
		`INSERT INTO activity (id, actor, action, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), actor, action, detail, time.Now().UTC(),
	)
	return err
}

// TailActivity returns the most recent activity lines, oldest first,
// preformatted for the plain-text /logs endpoint.
func (s *Store) TailActivity(limit int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT actor, action, detail, created_at FROM activity ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var actor, action string
		var detail sql.NullString
		var at time.Time
		if err := rows.Scan(&actor, &action, &detail, &at); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		line := fmt.Sprintf("%s %s %s", at.Format(time.RFC3339), actor, action)
		if detail.Valid && detail.String != "" {
			line += " " + detail.String
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// reverse to oldest-first
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
