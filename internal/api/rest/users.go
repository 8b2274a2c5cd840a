package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tduarte/shorts-server/internal/model"
	"github.com/tduarte/shorts-server/internal/service"
)

// UsersHandler exposes account operations over HTTP.
type UsersHandler struct {
	users   *service.Users
	session model.SessionManager
}

func NewUsersHandler(users *service.Users, session model.SessionManager) *UsersHandler {
	return &UsersHandler{users: users, session: session}
}

func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, fmt.Errorf("%w: invalid body", model.ErrBadRequest))
		return
	}

	created, err := h.users.CreateUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created.WithoutPassword())
}

func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var update model.User
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, fmt.Errorf("%w: invalid body", model.ErrBadRequest))
		return
	}

	updated, err := h.users.UpdateUser(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.WithoutPassword())
}

func (h *UsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.users.DeleteUser(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted.WithoutPassword())
}

func (h *UsersHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.SearchUsers(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	token, err := h.users.Login(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// Me resolves the caller from a bearer session token and returns their
// profile.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	const prefix = "Bearer "

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, prefix) {
		writeError(w, fmt.Errorf("%w: missing bearer token", model.ErrForbidden))
		return
	}

	userID, err := h.session.ParseAccessToken(strings.TrimPrefix(auth, prefix))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid session token", model.ErrForbidden))
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
