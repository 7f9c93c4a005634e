// Package server implements the Tablero backend daemon: the REST API the
// clients, caches and views consume.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tablerohq/tablero/internal/models"
	"github.com/tablerohq/tablero/internal/server/store"
)

// Server provides the HTTP API for Tablero.
type Server struct {
	store  *store.Store
	addr   string
	server *http.Server

	mu       sync.RWMutex
	sessions map[string]string // token -> user id
}

// NewServer creates a new HTTP server over the given store.
func NewServer(st *store.Store, addr string) *Server {
	return &Server{
		store:    st,
		addr:     addr,
		sessions: make(map[string]string),
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/register", s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/auth/change-password", s.handleChangePassword)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleCreateTask)
			r.Get("/metrics", s.handleTaskMetrics)
			r.Get("/{id}", s.handleGetTask)
			r.Put("/{id}", s.handleUpdateTask)
			r.Delete("/{id}", s.handleDeleteTask)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Get("/{id}", s.handleGetUser)
			r.Put("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})

		r.Get("/notifications", s.handleListNotifications)
		r.Patch("/notifications/{id}/read", s.handleMarkNotificationRead)

		r.Get("/logs", s.handleLogs)
		r.Get("/dashboard/stats", s.handleDashboardStats)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting Tablero daemon on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Seed creates one demo account per role behind the shared password when
// the user table is empty.
func (s *Server) Seed(password string) error {
	users, err := s.store.ListUsers()
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	demo := []models.UserDraft{
		{Name: "Ana Torres", Email: "admin@tablero.test", Role: models.RoleAdmin, Department: "Operations"},
		{Name: "Marco Rivas", Email: "manager@tablero.test", Role: models.RoleManager, Department: "Delivery"},
		{Name: "Lucia Pardo", Email: "collab@tablero.test", Role: models.RoleCollaborator, Department: "Engineering"},
		{Name: "Cliente Andino", Email: "client@tablero.test", Role: models.RoleClient, Company: "Andino SAS"},
	}
	for _, d := range demo {
		d.Password = password
		if _, err := s.store.CreateUser(d); err != nil {
			return fmt.Errorf("seed %s: %w", d.Email, err)
		}
		log.Printf("Seeded demo user %s (%s)", d.Email, d.Role)
	}
	return nil
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	OK   bool   `json:"ok"`
	DB   string `json:"db"`
	Time string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{OK: true, DB: "ok", Time: time.Now().UTC().Format(time.RFC3339)}
	status := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		resp.OK = false
		resp.DB = err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
