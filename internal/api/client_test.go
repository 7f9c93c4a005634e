package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tablerohq/tablero/internal/models"
)

func staticToken(tok string) TokenFunc {
	return func() string { return tok }
}

func TestTokenReadAtCallTime(t *testing.T) {
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.Task{ID: "t1"})
	}))
	defer ts.Close()

	token := "first"
	client := New(ts.URL, func() string { return token })

	if _, err := client.Tasks().Get(context.Background(), "t1"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Token rotated between calls; the client must pick it up.
	token = "second"
	if _, err := client.Tasks().Get(context.Background(), "t1"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(seen))
	}
	if seen[0] != "Bearer first" || seen[1] != "Bearer second" {
		t.Errorf("Expected rotated bearer headers, got %v", seen)
	}
}

func TestUnauthenticatedShortCircuit(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken(""))

	_, err := client.Tasks().List(context.Background(), ListOptions{})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Expected ErrUnauthenticated, got %v", err)
	}
	if requests != 0 {
		t.Errorf("Expected no network traffic when signed out, got %d requests", requests)
	}
}

func TestRequestErrorFromServerBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "task not visible"})
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken("tok"))

	_, err := client.Tasks().Get(context.Background(), "t1")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError, got %v", err)
	}
	if reqErr.Status != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", reqErr.Status)
	}
	if reqErr.Message != "task not visible" {
		t.Errorf("Expected server message, got %q", reqErr.Message)
	}
}

func TestRequestErrorFallbackMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken("tok"))

	_, err := client.Tasks().Get(context.Background(), "t1")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError, got %v", err)
	}
	if reqErr.Message != "failed to fetch task" {
		t.Errorf("Expected fallback message, got %q", reqErr.Message)
	}
}

func TestTaskListPagination(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "pending" || q.Get("page") != "2" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(TaskPage{
			Data:     []models.Task{{ID: "t1"}},
			Total:    51,
			Page:     2,
			PageSize: 50,
		})
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken("tok"))

	page, err := client.Tasks().List(context.Background(), ListOptions{
		Status: models.TaskStatusPending,
		Page:   2,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 51 || len(page.Data) != 1 {
		t.Errorf("Expected total 51 with 1 task, got %d/%d", page.Total, len(page.Data))
	}
}

func TestTaskListMissingData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total": 0}`))
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken("tok"))

	_, err := client.Tasks().List(context.Background(), ListOptions{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestUserListRequiresEnvelope(t *testing.T) {
	// A bare array is not the contract; only {"data": [...]} is accepted.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"u1"}]`))
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken("tok"))

	_, err := client.Users().List(context.Background())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Expected ErrMalformedResponse for bare array, got %v", err)
	}
}

func TestUserListEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"u1"},{"id":"u2"}]}`))
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken("tok"))

	users, err := client.Users().List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}
}

func TestNotificationListNormalizesReadFlag(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"notifications":[{"id":"n1","is_read":"0"},{"id":"n2","is_read":"1"}],"unreadCount":1}`))
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken("tok"))

	list, err := client.Notifications().List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Notifications[0].IsRead.Bool() {
		t.Error(`Expected "0" to decode as unread`)
	}
	if !list.Notifications[1].IsRead.Bool() {
		t.Error(`Expected "1" to decode as read`)
	}
	if list.UnreadCount != 1 {
		t.Errorf("Expected unread count 1, got %d", list.UnreadCount)
	}
}

func TestLoginSkipsAuthShortCircuit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("Login must not send a bearer token")
		}
		json.NewEncoder(w).Encode(LoginResult{Token: "tok", User: models.User{ID: "u1"}})
	}))
	defer ts.Close()

	// Signed out, yet login must still reach the server.
	client := New(ts.URL, staticToken(""))

	res, err := client.Auth().Login(context.Background(), "ana@tablero.test", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.Token != "tok" {
		t.Errorf("Expected token, got %q", res.Token)
	}
}

func TestLoginEmptyTokenMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(LoginResult{User: models.User{ID: "u1"}})
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken(""))

	_, err := client.Auth().Login(context.Background(), "ana@tablero.test", "secret")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Expected ErrMalformedResponse for missing token, got %v", err)
	}
}

func TestLogsTailRawText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("2026-03-15T12:00:00Z ana login\n"))
	}))
	defer ts.Close()

	client := New(ts.URL, staticToken("tok"))

	text, err := client.Logs().Tail(context.Background())
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if text != "2026-03-15T12:00:00Z ana login\n" {
		t.Errorf("Expected raw log text, got %q", text)
	}
}
