package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// UsersPage handles GET /users.
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
	}

	s.Templates.Render(w, "users.html", &struct {
		PageData
		Users []model.User
		Roles []string
	}{
		PageData: s.page(w, r, "Accounts"),
		Users:    users,
		Roles:    []string{model.RolePatron, model.RoleAdmin},
	})
}

// UserUpdateRoleSubmit handles POST /users/{id}/role.
func (s *Server) UserUpdateRoleSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if id == claims.UserID {
		s.flash(w, r, "error", "You cannot change your own role.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	role := r.FormValue("role")
	if err := store.UpdateUserRole(r.Context(), s.DB, id, role); err != nil {
		_, msg := describe(err)
		s.flash(w, r, "error", msg)
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	slog.Info("user role changed", "user", claims.Username, "target", id, "role", role)
	s.flash(w, r, "success", fmt.Sprintf("Role updated to %s.", role))
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}
