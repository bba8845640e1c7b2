package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/knjiznica/internal/auth"
	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

type settingsPage struct {
	PageData
	FinePerDay string
}

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, status int, data *settingsPage) {
	if data.FinePerDay == "" {
		rate, err := store.GetFinePerDay(r.Context(), s.DB)
		if err != nil {
			slog.Error("failed to get fine rate", "error", err)
		}
		data.FinePerDay = formatCents(rate)
	}
	s.Templates.RenderStatus(w, status, "settings.html", data)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.renderSettings(w, r, http.StatusOK, &settingsPage{PageData: s.page(w, r, "Settings")})
}

// SettingsSubmit handles POST /settings. The form either sets the daily fine
// or changes the signed-in librarian's password.
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	data := &settingsPage{PageData: s.page(w, r, "Settings")}

	switch r.FormValue("action") {
	case "fine":
		input := strings.TrimSpace(r.FormValue("fine_per_day"))
		cents, err := parseCents(input)
		if err != nil {
			data.Error = "Fine must be an amount like 0.50."
			data.FinePerDay = input
			s.renderSettings(w, r, http.StatusBadRequest, data)
			return
		}
		if err := store.SetFinePerDay(r.Context(), s.DB, cents); err != nil {
			status, msg := describe(err)
			data.Error = msg
			s.renderSettings(w, r, status, data)
			return
		}
		slog.Info("fine rate changed", "user", claims.Username, "cents", cents)
		data.Success = "Daily fine set to " + formatCents(cents) + "."

	case "password":
		current := r.FormValue("current_password")
		next := r.FormValue("new_password")

		user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
		if err != nil || user == nil {
			slog.Error("failed to load current user", "user", claims.Username, "error", err)
			data.Error = "Could not load your account."
			s.renderSettings(w, r, http.StatusInternalServerError, data)
			return
		}
		if !auth.CheckPassword(user.PasswordHash, current) {
			data.Error = "Current password is incorrect."
			s.renderSettings(w, r, http.StatusBadRequest, data)
			return
		}
		if err := model.ValidatePassword(next); err != nil {
			_, msg := describe(err)
			data.Error = msg
			s.renderSettings(w, r, http.StatusBadRequest, data)
			return
		}
		hash, err := auth.HashPassword(next)
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			data.Error = "Could not save the new password."
			s.renderSettings(w, r, http.StatusInternalServerError, data)
			return
		}
		if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, hash); err != nil {
			_, msg := describe(err)
			data.Error = msg
			s.renderSettings(w, r, http.StatusInternalServerError, data)
			return
		}
		slog.Info("password changed", "user", claims.Username)
		data.Success = "Password changed."

	default:
		data.Error = "Unknown settings action."
		s.renderSettings(w, r, http.StatusBadRequest, data)
		return
	}

	s.renderSettings(w, r, http.StatusOK, data)
}
