package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tablerohq/tablero/internal/models"
)

// userList is the envelope GET /users returns. Always enveloped; clients
// rely on it.
type userList struct {
	Data []models.User `json:"data"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, userList{Data: users})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	caller := currentUser(r)
	id := chi.URLParam(r, "id")

	// Admins edit anyone; everyone else may only edit their own profile,
	// and never their own role.
	if !models.CanManageUsers(caller) && caller.ID != id {
		writeError(w, http.StatusForbidden, "cannot edit other users")
		return
	}

	var patch models.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !models.CanManageUsers(caller) && patch.Role != nil {
		writeError(w, http.StatusForbidden, "cannot change own role")
		return
	}
	if patch.Email != nil && !models.ValidEmail(*patch.Email) {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	if patch.Phone != nil && !models.ValidPhone(*patch.Phone) {
		writeError(w, http.StatusBadRequest, "phone must include a country code")
		return
	}
	if patch.Role != nil && !patch.Role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	user, err := s.store.UpdateUser(id, patch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	s.store.AppendActivity(caller.Email, "user-update", id)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := currentUser(r)
	if !models.CanManageUsers(caller) {
		writeError(w, http.StatusForbidden, "only admins may delete users")
		return
	}

	id := chi.URLParam(r, "id")
	if id == caller.ID {
		writeError(w, http.StatusBadRequest, "cannot delete own account")
		return
	}

	user, err := s.store.GetUser(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := s.store.DeleteUser(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.store.AppendActivity(caller.Email, "user-delete", user.Email)
	w.WriteHeader(http.StatusNoContent)
}
