package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/tablerohq/tablero/internal/api"
	"github.com/tablerohq/tablero/internal/models"
)

type fakeNotificationAPI struct {
	notifications []models.Notification
	unread        int
	fail          error
}

func (f *fakeNotificationAPI) List(ctx context.Context) (*api.NotificationList, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]models.Notification, len(f.notifications))
	copy(out, f.notifications)
	return &api.NotificationList{Notifications: out, UnreadCount: f.unread}, nil
}

func (f *fakeNotificationAPI) MarkRead(ctx context.Context, id string) error {
	if f.fail != nil {
		return f.fail
	}
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			if !f.notifications[i].IsRead.Bool() {
				f.notifications[i].IsRead = true
				f.unread--
			}
			return nil
		}
	}
	return &api.RequestError{Status: 404, Message: "notification not found"}
}

func TestNotificationStoreFetchAll(t *testing.T) {
	fake := &fakeNotificationAPI{
		notifications: []models.Notification{
			{ID: "n1", Message: "one"},
			{ID: "n2", Message: "two", IsRead: true},
		},
		unread: 1,
	}
	store := NewNotificationStore(fake)

	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if got := len(store.Notifications()); got != 2 {
		t.Errorf("Expected 2 notifications, got %d", got)
	}
	if got := store.UnreadCount(); got != 1 {
		t.Errorf("Expected 1 unread, got %d", got)
	}
}

func TestNotificationStoreMarkRead(t *testing.T) {
	fake := &fakeNotificationAPI{
		notifications: []models.Notification{{ID: "n1"}, {ID: "n2"}},
		unread:        2,
	}
	store := NewNotificationStore(fake)
	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if err := store.MarkRead(context.Background(), "n1"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	if !store.Notifications()[0].IsRead.Bool() {
		t.Error("Expected notification flagged read")
	}
	if got := store.UnreadCount(); got != 1 {
		t.Errorf("Expected unread count 1, got %d", got)
	}

	// Marking the same notification again must not double-decrement.
	if err := store.MarkRead(context.Background(), "n1"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if got := store.UnreadCount(); got != 1 {
		t.Errorf("Expected unread count still 1, got %d", got)
	}
}

func TestNotificationStoreMarkReadError(t *testing.T) {
	fake := &fakeNotificationAPI{
		notifications: []models.Notification{{ID: "n1"}},
		unread:        1,
	}
	store := NewNotificationStore(fake)
	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	fake.fail = errors.New("boom")
	if err := store.MarkRead(context.Background(), "n1"); err == nil {
		t.Fatal("Expected mark read error")
	}
	if store.Notifications()[0].IsRead.Bool() {
		t.Error("Failed mark must leave the notification unread")
	}
	if got := store.UnreadCount(); got != 1 {
		t.Errorf("Expected unread count unchanged, got %d", got)
	}
}
