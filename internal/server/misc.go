package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tablerohq/tablero/internal/models"
)

const activityTail = 200

type notificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	notifications, unread, err := s.store.ListNotifications(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notificationList{Notifications: notifications, UnreadCount: unread})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	ok, err := s.store.MarkNotificationRead(chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLogs serves the activity log as plain text, the one non-JSON body
// in the API.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user.Role != models.RoleAdmin && user.Role != models.RoleManager {
		writeError(w, http.StatusForbidden, "logs are restricted to admins and managers")
		return
	}

	lines, err := s.store.TailActivity(activityTail)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strings.Join(lines, "\n")))
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	tasks, _, err := s.store.ListTasks("", 1, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	users, err := s.store.ListUsers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tasks = models.VisibleTasks(currentUser(r), tasks)
	writeJSON(w, http.StatusOK, models.ComputeDashboardStats(tasks, users))
}
