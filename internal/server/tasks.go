package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tablerohq/tablero/internal/models"
)

const defaultPageSize = 50

// taskPage is the paged envelope GET /tasks returns.
type taskPage struct {
	Data     []models.Task `json:"data"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status := models.TaskStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status "+string(status))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	tasks, total, err := s.store.ListTasks(status, page, pageSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Role scoping happens after the page query; collaborators and clients
	// see only their slice of the page.
	user := currentUser(r)
	tasks = models.VisibleTasks(user, tasks)
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(w, http.StatusOK, taskPage{Data: tasks, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if !models.CanViewTask(currentUser(r), *task) {
		writeError(w, http.StatusForbidden, "task not visible to this role")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var draft models.TaskDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	user := currentUser(r)
	if draft.AssignedBy == "" {
		draft.AssignedBy = user.ID
	}
	if draft.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}
	if !draft.Type.Valid() {
		writeError(w, http.StatusBadRequest, "invalid task type")
		return
	}
	if draft.Priority == "" {
		draft.Priority = models.PriorityMedium
	}
	if !draft.Priority.Valid() {
		writeError(w, http.StatusBadRequest, "invalid priority")
		return
	}
	if draft.EstimatedHours < 0 {
		writeError(w, http.StatusBadRequest, "estimated hours must be non-negative")
		return
	}

	task, err := s.store.CreateTask(draft)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if task.AssignedTo != "" && task.AssignedTo != user.ID {
		s.store.CreateNotification(task.AssignedTo,
			fmt.Sprintf("%s assigned you: %s", user.Name, task.Title), "assignment")
	}
	s.store.AppendActivity(user.Email, "task-create", task.ID)
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status "+string(*patch.Status))
		return
	}
	if patch.ActualHours != nil && *patch.ActualHours < 0 {
		writeError(w, http.StatusBadRequest, "actual hours must be non-negative")
		return
	}

	id := chi.URLParam(r, "id")
	existing, err := s.store.GetTask(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	user := currentUser(r)
	if !models.CanEditTask(user, *existing) {
		writeError(w, http.StatusForbidden, "task not editable by this role")
		return
	}

	task, err := s.store.UpdateTask(id, patch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.store.AppendActivity(user.Email, "task-update", id)
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user.Role != models.RoleAdmin && user.Role != models.RoleManager {
		writeError(w, http.StatusForbidden, "only admins and managers may delete tasks")
		return
	}

	id := chi.URLParam(r, "id")
	existing, err := s.store.GetTask(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := s.store.DeleteTask(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.store.AppendActivity(user.Email, "task-delete", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskMetrics(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, models.ComputeMetrics(tasks, users, time.Now()))
}
