package api

import (
	"context"
	"net/http"

	"github.com/tablerohq/tablero/internal/models"
)

// NotificationClient wraps the /notifications resource.
type NotificationClient struct {
	c *Client
}

// NotificationList is the envelope GET /notifications returns.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// List fetches the caller's notifications with the unread count.
func (nc *NotificationClient) List(ctx context.Context) (*NotificationList, error) {
	var list NotificationList
	if err := nc.c.do(ctx, http.MethodGet, "/notifications", nil, &list, "failed to fetch notifications"); err != nil {
		return nil, err
	}
	return &list, nil
}

// MarkRead flags one notification as read.
func (nc *NotificationClient) MarkRead(ctx context.Context, id string) error {
	return nc.c.do(ctx, http.MethodPatch, "/notifications/"+id+"/read", nil, nil, "failed to mark notification read")
}
