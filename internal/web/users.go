package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/printroom/stockroom/internal/auth"
	"github.com/printroom/stockroom/internal/model"
	"github.com/printroom/stockroom/internal/store"
)

type usersPage struct {
	PageData
	Users []model.User
}

// UsersPage handles GET /users (admin).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	s.renderUsers(w, r, http.StatusOK, "", "")
}

// UserCreateSubmit handles POST /users (admin).
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	role := r.FormValue("role")

	if username == "" || !model.ValidRole(role) {
		s.renderUsers(w, r, http.StatusBadRequest, "Enter a username and pick a role.", "")
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		s.renderUsers(w, r, http.StatusBadRequest, "Password must be at least 8 characters.", "")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}
	if _, err := store.CreateUser(r.Context(), s.DB, username, hash, role); err != nil {
		s.renderUsers(w, r, http.StatusConflict, "Username already exists.", "")
		return
	}

	slog.Info("user created", "user", claims.Username, "new_user", username, "role", role)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// UserResetPasswordSubmit handles POST /users/{id}/password (admin).
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	newPassword := r.FormValue("new_password")
	if err := model.ValidatePassword(newPassword); err != nil {
		s.renderUsers(w, r, http.StatusBadRequest, "Password must be at least 8 characters.", "")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}
	if err := store.UpdateUserPassword(r.Context(), s.DB, id, hash); err != nil {
		s.renderUsers(w, r, http.StatusNotFound, "User not found.", "")
		return
	}

	slog.Info("user password reset", "user", GetWebClaims(r.Context()).Username, "target_id", id)
	s.renderUsers(w, r, http.StatusOK, "", "Password reset.")
}

// UserDeleteSubmit handles POST /users/{id}/delete (admin).
func (s *Server) UserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	if id == claims.UserID {
		s.renderUsers(w, r, http.StatusBadRequest, "You cannot delete yourself.", "")
		return
	}

	if err := store.DeleteUser(r.Context(), s.DB, id); err != nil {
		s.renderUsers(w, r, http.StatusNotFound, "User not found.", "")
		return
	}

	slog.Info("user deleted", "user", claims.Username, "target_id", id)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (s *Server) renderUsers(w http.ResponseWriter, r *http.Request, status int, errMsg, success string) {
	users, err := store.ListUsers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
	}

	data := usersPage{PageData: s.page(r, "Users"), Users: users}
	data.Error = errMsg
	data.Success = success
	s.Templates.RenderStatus(w, status, "users.html", &data)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Settings")
	s.Templates.Render(w, "settings.html", &data)
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	data := s.page(r, "Settings")

	render := func(status int, errMsg, success string) {
		data.Error = errMsg
		data.Success = success
		s.Templates.RenderStatus(w, status, "settings.html", &data)
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if currentPassword == "" || newPassword == "" {
		render(http.StatusBadRequest, "Enter your current and new password.", "")
		return
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		render(http.StatusBadRequest, "Password must be at least 8 characters.", "")
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		render(http.StatusInternalServerError, "Could not load your account.", "")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		render(http.StatusUnauthorized, "Current password is incorrect.", "")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		render(http.StatusInternalServerError, "Could not save the password.", "")
		return
	}
	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, hash); err != nil {
		render(http.StatusInternalServerError, "Could not save the password.", "")
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	render(http.StatusOK, "", "Password changed.")
}
