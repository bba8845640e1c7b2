package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/knjiznica/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	booksHandler := &BooksHandler{DB: db}
	patronsHandler := &PatronsHandler{DB: db}
	borrowsHandler := &BorrowsHandler{DB: db}
	reportHandler := &ReportHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(requireAdmin(h))
	}

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/books", booksHandler.List)
	mux.HandleFunc("GET /api/books/{id}", booksHandler.Get)

	// Authenticated.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("POST /api/borrows", authMW(http.HandlerFunc(borrowsHandler.Checkout)))

	// Admin only.
	mux.Handle("POST /api/books", admin(booksHandler.Create))

	mux.Handle("GET /api/patrons", admin(patronsHandler.List))
	mux.Handle("POST /api/patrons", admin(patronsHandler.Create))
	mux.Handle("GET /api/patrons/{id}", admin(patronsHandler.Get))

	mux.Handle("GET /api/borrows", admin(borrowsHandler.List))
	mux.Handle("POST /api/borrows/{id}/return", admin(borrowsHandler.Return))
	mux.Handle("POST /api/borrows/{id}/renew", admin(borrowsHandler.Renew))

	mux.Handle("GET /api/report", admin(reportHandler.Get))

	return mux
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
