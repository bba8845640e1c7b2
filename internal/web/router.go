package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/sessions"

	webembed "github.com/erazemk/knjiznica/web"
)

// Options configures the web router.
type Options struct {
	// Sessions carries flash notices between a redirect and the next page.
	Sessions sessions.Store

	// SecureCookies marks the token cookie Secure.
	SecureCookies bool

	// LoginLimit caps login attempts per client address per minute. Zero
	// means 10.
	LoginLimit int
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:            db,
		Templates:     templates,
		JWTSecret:     jwtSecret,
		Sessions:      opts.Sessions,
		SecureCookies: opts.SecureCookies,
	}

	limit := opts.LoginLimit
	if limit <= 0 {
		limit = 10
	}
	loginLimiter := NewRateLimiter(limit, time.Minute)

	mux := http.NewServeMux()
	admin := s.RequireAdmin

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /{$}", s.Index)
	mux.HandleFunc("GET /books/{id}", s.BookDetailPage)
	mux.HandleFunc("GET /books/{id}/cover", s.BookCoverGet)
	mux.HandleFunc("GET /borrow_book", s.BorrowBookPage)
	mux.HandleFunc("POST /borrow_book", s.BorrowBookSubmit)

	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", loginLimiter.Middleware(s.LoginSubmit))
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("GET /sign_up", s.RegisterPage)
	mux.HandleFunc("POST /sign_up", s.RegisterSubmit)
	mux.HandleFunc("GET /logout", s.Logout)
	mux.HandleFunc("POST /logout", s.Logout)

	// Admin routes.
	mux.Handle("GET /add_book", admin(s.AddBookPage))
	mux.Handle("POST /add_book", admin(s.AddBookSubmit))
	mux.Handle("POST /books/{id}/cover", admin(s.BookCoverSubmit))

	mux.Handle("GET /report", admin(s.ReportPage))

	mux.Handle("GET /patrons", admin(s.PatronsPage))
	mux.Handle("POST /patrons", admin(s.PatronCreateSubmit))

	mux.Handle("GET /borrows", admin(s.BorrowsPage))
	mux.Handle("POST /borrows/{id}/return", admin(s.ReturnSubmit))
	mux.Handle("POST /borrows/{id}/renew", admin(s.RenewSubmit))
	mux.Handle("POST /hold", admin(s.HoldSubmit))

	mux.Handle("GET /acquisitions", admin(s.AcquisitionsPage))
	mux.Handle("POST /acquisitions", admin(s.AcquisitionCreateSubmit))

	mux.Handle("GET /users", admin(s.UsersPage))
	mux.Handle("POST /users/{id}/role", admin(s.UserUpdateRoleSubmit))

	mux.Handle("GET /settings", admin(s.SettingsPage))
	mux.Handle("POST /settings", admin(s.SettingsSubmit))

	return SecurityHeaders(s.Authenticate(mux)), nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// formID parses a positive integer form field.
func formID(r *http.Request, field string) (int64, bool) {
	id, err := strconv.ParseInt(r.FormValue(field), 10, 64)
	return id, err == nil && id > 0
}
