package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/knjiznica/internal/auth"
	"github.com/erazemk/knjiznica/internal/store"
)

type authPage struct {
	PageData
	Username string
	Email    string
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &authPage{PageData: s.page(w, r, "Log in")})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	data := &authPage{PageData: s.page(w, r, "Log in"), Email: email}

	if email == "" || password == "" {
		data.Error = "Enter your email and password."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "login.html", data)
		return
	}

	user, err := store.Authenticate(r.Context(), s.DB, email, password)
	if err != nil {
		status, msg := describe(err)
		slog.Warn("login failed", "email", email, "ip", r.RemoteAddr)
		data.Error = msg
		s.Templates.RenderStatus(w, status, "login.html", data)
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		slog.Error("failed to generate token", "user", user.Username, "error", err)
		data.Error = "Login failed, please try again."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "login.html", data)
		return
	}

	s.setAuthCookie(w, token)
	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	s.flash(w, r, "success", "Welcome back, "+user.Username+".")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage handles GET /register and GET /sign_up.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &authPage{PageData: s.page(w, r, "Create account")})
}

// RegisterSubmit handles POST /register and POST /sign_up.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	data := &authPage{PageData: s.page(w, r, "Create account"), Username: username, Email: email}

	if confirm != "" && confirm != password {
		data.Error = "Passwords do not match."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "register.html", data)
		return
	}

	user, err := store.RegisterUser(r.Context(), s.DB, username, email, password)
	if err != nil {
		status, msg := describe(err)
		data.Error = msg
		s.Templates.RenderStatus(w, status, "register.html", data)
		return
	}

	slog.Info("user registered", "user", user.Username, "id", user.ID)
	s.flash(w, r, "success", "Account created. You can log in now.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout handles GET and POST /logout. The current token is revoked so a
// copied cookie stops working too. POST goes through the CSRF check; a GET
// is only honoured when the browser does not mark it cross-site.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && r.Header.Get("Sec-Fetch-Site") == "cross-site" {
		slog.Warn("cross-site logout refused", "referer", r.Referer())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if claims := GetWebClaims(r.Context()); claims != nil {
		if claims.ExpiresAt != nil {
			if err := store.RevokeSession(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Error("failed to revoke session", "user", claims.Username, "error", err)
			}
		}
		slog.Info("user logged out", "user", claims.Username)
	}

	s.clearAuthCookie(w)
	s.flash(w, r, "success", "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
