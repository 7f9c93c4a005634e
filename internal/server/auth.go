package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tablerohq/tablero/internal/models"
	"github.com/tablerohq/tablero/internal/server/store"
)

type contextKey string

const userKey contextKey = "user"

// currentUser returns the authenticated user placed in the request context
// by requireAuth.
func currentUser(r *http.Request) models.User {
	return r.Context().Value(userKey).(models.User)
}

// requireAuth resolves the bearer token to a user and rejects the request
// when the token is missing, unknown, or belongs to an inactive account.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		s.mu.RLock()
		userID, ok := s.sessions[token]
		s.mu.RUnlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := s.store.GetUser(userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if user == nil || user.Status != models.UserActive {
			writeError(w, http.StatusUnauthorized, "account disabled")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, *user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	user, hash, err := s.store.GetUserByEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil || hash != store.HashPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if user.Status != models.UserActive {
		writeError(w, http.StatusUnauthorized, "account disabled")
		return
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.sessions[token] = user.ID
	s.mu.Unlock()

	s.store.AppendActivity(user.Email, "login", "")
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: *user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var draft models.UserDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	// Bootstrap: the very first account may register without a token.
	// After that only admins create accounts.
	existing, err := s.store.ListUsers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	actor := "bootstrap"
	if len(existing) > 0 {
		user, ok := s.authenticate(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if !models.CanManageUsers(user) {
			writeError(w, http.StatusForbidden, "only admins may register users")
			return
		}
		actor = user.Email
	}

	if !models.ValidEmail(draft.Email) {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	if !models.ValidPhone(draft.Phone) {
		writeError(w, http.StatusBadRequest, "phone must include a country code")
		return
	}
	if !draft.Role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if draft.Password == "" {
		writeError(w, http.StatusBadRequest, "password required")
		return
	}

	user, err := s.store.CreateUser(draft)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	s.store.AppendActivity(actor, "register", user.Email)
	writeJSON(w, http.StatusCreated, user)
}

// authenticate resolves the bearer token outside the middleware chain, for
// the register bootstrap path.
func (s *Server) authenticate(r *http.Request) (models.User, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return models.User{}, false
	}
	s.mu.RLock()
	userID, ok := s.sessions[strings.TrimPrefix(header, "Bearer ")]
	s.mu.RUnlock()
	if !ok {
		return models.User{}, false
	}
	user, err := s.store.GetUser(userID)
	if err != nil || user == nil {
		return models.User{}, false
	}
	return *user, true
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	user := currentUser(r)
	_, hash, err := s.store.GetUserByEmail(user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hash != store.HashPassword(req.Current) {
		writeError(w, http.StatusUnauthorized, "current password does not match")
		return
	}
	if req.New == "" {
		writeError(w, http.StatusBadRequest, "new password required")
		return
	}

	if err := s.store.UpdatePassword(user.ID, req.New); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.store.AppendActivity(user.Email, "change-password", "")
	w.WriteHeader(http.StatusNoContent)
}
