package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tablerohq/tablero/internal/models"
	"github.com/tablerohq/tablero/internal/server/store"
)

const testPassword = "secret"

// newTestServer spins up the full router over a temp database seeded with
// the demo accounts.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	s := NewServer(st, "127.0.0.1:0")
	if err := s.Seed(testPassword); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

// doRequest issues one JSON request with an optional bearer token.
func doRequest(t *testing.T, ts *httptest.Server, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// login signs in one of the seeded accounts and returns the token and user.
func login(t *testing.T, ts *httptest.Server, email string) (string, models.User) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login for %s: expected 200, got %d", email, resp.StatusCode)
	}
	var result loginResponse
	decode(t, resp, &result)
	if result.Token == "" {
		t.Fatal("Expected a token")
	}
	return result.Token, result.User
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	var health HealthResponse
	decode(t, resp, &health)
	if !health.OK || health.DB != "ok" {
		t.Errorf("Expected healthy response, got %+v", health)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@tablero.test",
		"password": "wrong",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	_, ts := newTestServer(t)
	adminToken, _ := login(t, ts, "admin@tablero.test")
	_, collab := login(t, ts, "collab@tablero.test")

	status := models.UserInactive
	resp := doRequest(t, ts, http.MethodPut, "/users/"+collab.ID, adminToken, models.UserPatch{Status: &status})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "collab@tablero.test",
		"password": testPassword,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 for disabled account, got %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodGet, "/tasks", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/tasks", "bogus", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 with unknown token, got %d", resp.StatusCode)
	}
}

func TestRegisterBootstrapThenAdminOnly(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	s := NewServer(st, "127.0.0.1:0")
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	// Empty database: first registration needs no token.
	resp := doRequest(t, ts, http.MethodPost, "/auth/register", "", models.UserDraft{
		Name: "Ana", Email: "ana@tablero.test", Password: "secret", Role: models.RoleAdmin,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 for bootstrap, got %d", resp.StatusCode)
	}

	// Second registration without a token is rejected.
	resp = doRequest(t, ts, http.MethodPost, "/auth/register", "", models.UserDraft{
		Name: "Eve", Email: "eve@tablero.test", Password: "secret", Role: models.RoleAdmin,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}

	token, _ := login(t, ts, "ana@tablero.test")

	// Admin registers the next account.
	resp = doRequest(t, ts, http.MethodPost, "/auth/register", token, models.UserDraft{
		Name: "Marco", Email: "marco@tablero.test", Password: "secret", Role: models.RoleCollaborator,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected 201, got %d", resp.StatusCode)
	}

	// Non-admin may not register accounts.
	collabToken, _ := login(t, ts, "marco@tablero.test")
	resp = doRequest(t, ts, http.MethodPost, "/auth/register", collabToken, models.UserDraft{
		Name: "Mallory", Email: "mallory@tablero.test", Password: "secret", Role: models.RoleAdmin,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	_, ts := newTestServer(t)
	token, _ := login(t, ts, "admin@tablero.test")

	cases := []struct {
		name  string
		draft models.UserDraft
	}{
		{"bad email", models.UserDraft{Name: "X", Email: "not-an-email", Password: "p", Role: models.RoleClient}},
		{"bad phone", models.UserDraft{Name: "X", Email: "x@tablero.test", Password: "p", Role: models.RoleClient, Phone: "3001234567"}},
		{"bad role", models.UserDraft{Name: "X", Email: "x@tablero.test", Password: "p", Role: "boss"}},
		{"no password", models.UserDraft{Name: "X", Email: "x@tablero.test", Role: models.RoleClient}},
	}
	for _, c := range cases {
		resp := doRequest(t, ts, http.MethodPost, "/auth/register", token, c.draft)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", c.name, resp.StatusCode)
		}
	}
}

func TestChangePassword(t *testing.T) {
	_, ts := newTestServer(t)
	token, _ := login(t, ts, "collab@tablero.test")

	// Wrong current password.
	resp := doRequest(t, ts, http.MethodPost, "/auth/change-password", token, map[string]string{
		"current_password": "wrong", "new_password": "next",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/auth/change-password", token, map[string]string{
		"current_password": testPassword, "new_password": "next",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}

	// Old password no longer works, new one does.
	resp = doRequest(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "collab@tablero.test", "password": testPassword,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected old password rejected, got %d", resp.StatusCode)
	}
	resp = doRequest(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "collab@tablero.test", "password": "next",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected new password accepted, got %d", resp.StatusCode)
	}
}

func createTask(t *testing.T, ts *httptest.Server, token string, draft models.TaskDraft) models.Task {
	t.Helper()
	if draft.Type == "" {
		draft.Type = models.TaskTypeDevelopment
	}
	resp := doRequest(t, ts, http.MethodPost, "/tasks", token, draft)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create task: expected 201, got %d", resp.StatusCode)
	}
	var task models.Task
	decode(t, resp, &task)
	return task
}

func TestTaskLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	managerToken, manager := login(t, ts, "manager@tablero.test")
	_, collab := login(t, ts, "collab@tablero.test")

	task := createTask(t, ts, managerToken, models.TaskDraft{
		Title:      "Deploy staging",
		AssignedTo: collab.ID,
		Priority:   models.PriorityHigh,
	})
	if task.Status != models.TaskStatusPending {
		t.Errorf("Expected pending, got %s", task.Status)
	}
	if task.AssignedBy != manager.ID {
		t.Errorf("Expected assigned_by defaulted to caller, got %s", task.AssignedBy)
	}

	// Update status.
	status := models.TaskStatusInProgress
	resp := doRequest(t, ts, http.MethodPut, "/tasks/"+task.ID, managerToken, models.TaskPatch{Status: &status})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var updated models.Task
	decode(t, resp, &updated)
	if updated.Status != models.TaskStatusInProgress {
		t.Errorf("Expected in_progress, got %s", updated.Status)
	}
	if updated.Title != "Deploy staging" {
		t.Errorf("Unmentioned field changed: %s", updated.Title)
	}

	// Delete.
	resp = doRequest(t, ts, http.MethodDelete, "/tasks/"+task.ID, managerToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}
	resp = doRequest(t, ts, http.MethodGet, "/tasks/"+task.ID, managerToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestTaskValidation(t *testing.T) {
	_, ts := newTestServer(t)
	token, _ := login(t, ts, "manager@tablero.test")

	cases := []struct {
		name  string
		draft models.TaskDraft
	}{
		{"no title", models.TaskDraft{Type: models.TaskTypeSupport}},
		{"bad type", models.TaskDraft{Title: "X", Type: "chore"}},
		{"bad priority", models.TaskDraft{Title: "X", Type: models.TaskTypeSupport, Priority: "asap"}},
		{"negative hours", models.TaskDraft{Title: "X", Type: models.TaskTypeSupport, EstimatedHours: -1}},
	}
	for _, c := range cases {
		resp := doRequest(t, ts, http.MethodPost, "/tasks", token, c.draft)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", c.name, resp.StatusCode)
		}
	}
}

func TestTaskRoleScoping(t *testing.T) {
	_, ts := newTestServer(t)
	managerToken, _ := login(t, ts, "manager@tablero.test")
	collabToken, collab := login(t, ts, "collab@tablero.test")
	clientToken, _ := login(t, ts, "client@tablero.test")

	mine := createTask(t, ts, managerToken, models.TaskDraft{Title: "For collab", AssignedTo: collab.ID})
	other := createTask(t, ts, managerToken, models.TaskDraft{Title: "For nobody"})
	requested := createTask(t, ts, clientToken, models.TaskDraft{Title: "Client request", AssignedTo: collab.ID})

	// Manager sees all three.
	resp := doRequest(t, ts, http.MethodGet, "/tasks", managerToken, nil)
	var page taskPage
	decode(t, resp, &page)
	if len(page.Data) != 3 {
		t.Errorf("Expected manager to see 3 tasks, got %d", len(page.Data))
	}

	// Collaborator sees only assigned tasks.
	resp = doRequest(t, ts, http.MethodGet, "/tasks", collabToken, nil)
	decode(t, resp, &page)
	if len(page.Data) != 2 {
		t.Errorf("Expected collaborator to see 2 tasks, got %d", len(page.Data))
	}
	for _, task := range page.Data {
		if task.AssignedTo != collab.ID {
			t.Errorf("Collaborator saw foreign task %s", task.ID)
		}
	}

	// Client sees only requested tasks.
	resp = doRequest(t, ts, http.MethodGet, "/tasks", clientToken, nil)
	decode(t, resp, &page)
	if len(page.Data) != 1 || page.Data[0].ID != requested.ID {
		t.Errorf("Expected client to see only own request, got %v", page.Data)
	}

	// Direct get of a foreign task is 403.
	resp = doRequest(t, ts, http.MethodGet, "/tasks/"+other.ID, collabToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}

	// Clients are read-only.
	status := models.TaskStatusCompleted
	resp = doRequest(t, ts, http.MethodPut, "/tasks/"+requested.ID, clientToken, models.TaskPatch{Status: &status})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for client edit, got %d", resp.StatusCode)
	}

	// Collaborators may not delete.
	resp = doRequest(t, ts, http.MethodDelete, "/tasks/"+mine.ID, collabToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for collaborator delete, got %d", resp.StatusCode)
	}
}

func TestTaskListPaginationAndFilter(t *testing.T) {
	_, ts := newTestServer(t)
	token, _ := login(t, ts, "admin@tablero.test")

	for i := 0; i < 3; i++ {
		createTask(t, ts, token, models.TaskDraft{Title: fmt.Sprintf("Task %d", i)})
	}

	resp := doRequest(t, ts, http.MethodGet, "/tasks?page=2&pageSize=2", token, nil)
	var page taskPage
	decode(t, resp, &page)
	if page.Total != 3 || len(page.Data) != 1 || page.Page != 2 {
		t.Errorf("Expected page 2 with 1 of 3, got %+v", page)
	}

	resp = doRequest(t, ts, http.MethodGet, "/tasks?status=completed", token, nil)
	decode(t, resp, &page)
	if len(page.Data) != 0 {
		t.Errorf("Expected no completed tasks, got %d", len(page.Data))
	}
	if page.Data == nil {
		t.Error("Empty page must encode as [] not null")
	}

	resp = doRequest(t, ts, http.MethodGet, "/tasks?status=bogus", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

func TestAssignmentNotification(t *testing.T) {
	_, ts := newTestServer(t)
	managerToken, _ := login(t, ts, "manager@tablero.test")
	collabToken, collab := login(t, ts, "collab@tablero.test")

	createTask(t, ts, managerToken, models.TaskDraft{Title: "Incident review", AssignedTo: collab.ID})

	resp := doRequest(t, ts, http.MethodGet, "/notifications", collabToken, nil)
	var list notificationList
	decode(t, resp, &list)
	if len(list.Notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(list.Notifications))
	}
	if list.UnreadCount != 1 {
		t.Errorf("Expected unread count 1, got %d", list.UnreadCount)
	}
	if !strings.Contains(list.Notifications[0].Message, "Incident review") {
		t.Errorf("Expected task title in message, got %q", list.Notifications[0].Message)
	}

	// Mark read.
	resp = doRequest(t, ts, http.MethodPatch, "/notifications/"+list.Notifications[0].ID+"/read", collabToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/notifications", collabToken, nil)
	decode(t, resp, &list)
	if list.UnreadCount != 0 {
		t.Errorf("Expected unread count 0, got %d", list.UnreadCount)
	}

	// Another user cannot mark it.
	resp = doRequest(t, ts, http.MethodPatch, "/notifications/"+list.Notifications[0].ID+"/read", managerToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign notification, got %d", resp.StatusCode)
	}
}

func TestUsersEnvelope(t *testing.T) {
	_, ts := newTestServer(t)
	token, _ := login(t, ts, "collab@tablero.test")

	resp := doRequest(t, ts, http.MethodGet, "/users", token, nil)
	var list userList
	decode(t, resp, &list)
	if len(list.Data) != 4 {
		t.Errorf("Expected 4 seeded users in data envelope, got %d", len(list.Data))
	}
}

func TestUserAdministration(t *testing.T) {
	_, ts := newTestServer(t)
	adminToken, admin := login(t, ts, "admin@tablero.test")
	collabToken, collab := login(t, ts, "collab@tablero.test")

	// Self edit is allowed, but not a role change.
	name := "Lucia P."
	resp := doRequest(t, ts, http.MethodPut, "/users/"+collab.ID, collabToken, models.UserPatch{Name: &name})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 for self edit, got %d", resp.StatusCode)
	}

	role := models.RoleAdmin
	resp = doRequest(t, ts, http.MethodPut, "/users/"+collab.ID, collabToken, models.UserPatch{Role: &role})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for self role change, got %d", resp.StatusCode)
	}

	// Editing someone else requires admin.
	resp = doRequest(t, ts, http.MethodPut, "/users/"+admin.ID, collabToken, models.UserPatch{Name: &name})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}

	// Delete requires admin, and never self.
	resp = doRequest(t, ts, http.MethodDelete, "/users/"+admin.ID, collabToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for non-admin delete, got %d", resp.StatusCode)
	}
	resp = doRequest(t, ts, http.MethodDelete, "/users/"+admin.ID, adminToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for self delete, got %d", resp.StatusCode)
	}
	resp = doRequest(t, ts, http.MethodDelete, "/users/"+collab.ID, adminToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
}

func TestLogsRestricted(t *testing.T) {
	_, ts := newTestServer(t)
	adminToken, _ := login(t, ts, "admin@tablero.test")
	collabToken, _ := login(t, ts, "collab@tablero.test")

	resp := doRequest(t, ts, http.MethodGet, "/logs", collabToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for collaborator, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/logs", adminToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected plain text, got %s", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Read body failed: %v", err)
	}
	if !strings.Contains(string(body), "login") {
		t.Errorf("Expected login activity in logs, got %q", body)
	}
}

func TestDashboardStats(t *testing.T) {
	_, ts := newTestServer(t)
	token, _ := login(t, ts, "manager@tablero.test")

	createTask(t, ts, token, models.TaskDraft{Title: "A", Priority: models.PriorityHigh})
	createTask(t, ts, token, models.TaskDraft{Title: "B", Priority: models.PriorityLow})

	resp := doRequest(t, ts, http.MethodGet, "/dashboard/stats", token, nil)
	var stats models.DashboardStats
	decode(t, resp, &stats)
	if stats.TotalTasks != 2 {
		t.Errorf("Expected 2 tasks, got %d", stats.TotalTasks)
	}
	if stats.TasksByStatus[models.TaskStatusPending] != 2 {
		t.Errorf("Expected 2 pending, got %d", stats.TasksByStatus[models.TaskStatusPending])
	}
	if stats.UsersByRole[models.RoleAdmin] != 1 {
		t.Errorf("Expected 1 admin, got %d", stats.UsersByRole[models.RoleAdmin])
	}
}

func TestTaskMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	token, _ := login(t, ts, "manager@tablero.test")

	task := createTask(t, ts, token, models.TaskDraft{Title: "A"})
	createTask(t, ts, token, models.TaskDraft{Title: "B"})

	status := models.TaskStatusCompleted
	resp := doRequest(t, ts, http.MethodPut, "/tasks/"+task.ID, token, models.TaskPatch{Status: &status})
	resp.Body.Close()

	resp = doRequest(t, ts, http.MethodGet, "/tasks/metrics", token, nil)
	var metrics models.TaskMetrics
	decode(t, resp, &metrics)
	if metrics.TotalTasks != 2 || metrics.CompletedTasks != 1 {
		t.Errorf("Expected 2 tasks with 1 completed, got %d/%d", metrics.TotalTasks, metrics.CompletedTasks)
	}
	if metrics.CompletionRate != 0.5 {
		t.Errorf("Expected completion rate 0.5, got %f", metrics.CompletionRate)
	}
}

func TestSeedIdempotent(t *testing.T) {
	s, _ := newTestServer(t)

	// Second seed on a populated table is a no-op.
	if err := s.Seed("other"); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	users, err := s.store.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 4 {
		t.Errorf("Expected 4 users, got %d", len(users))
	}
}
