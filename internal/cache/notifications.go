package cache

import (
	"context"
	"sync"

	"github.com/tablerohq/tablero/internal/models"
)

// NotificationStore is the client-side notification collection.
type NotificationStore struct {
	api NotificationAPI

	mu            sync.Mutex
	notifications []models.Notification
	unread        int
	loading       bool
	lastErr       error
}

// NewNotificationStore creates an empty store backed by the given client.
func NewNotificationStore(a NotificationAPI) *NotificationStore {
	return &NotificationStore{api: a}
}

// Notifications returns a copy of the current collection.
func (s *NotificationStore) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// UnreadCount returns the server-reported unread count from the last fetch,
// adjusted by local MarkRead calls since.
func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Loading reports whether a fetch is in flight.
func (s *NotificationStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the most recent operation failure, or nil.
func (s *NotificationStore) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// FetchAll replaces the collection and unread count with the server
// snapshot.
func (s *NotificationStore) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	list, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		return err
	}
	s.notifications = list.Notifications
	s.unread = list.UnreadCount
	s.lastErr = nil
	return nil
}

// MarkRead flags the notification remotely, then locally, decrementing the
// unread count.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	if err := s.api.MarkRead(ctx, id); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && !s.notifications[i].IsRead.Bool() {
			s.notifications[i].IsRead = true
			if s.unread > 0 {
				s.unread--
			}
			break
		}
	}
	s.lastErr = nil
	return nil
}
