package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/erazemk/knjiznica/internal/auth"
	"github.com/erazemk/knjiznica/internal/lending"
	"github.com/erazemk/knjiznica/internal/model"
	webembed "github.com/erazemk/knjiznica/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatCents": formatCents,
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return lending.FormatDate(t)
		},
		"isOverdue": func(b model.Borrow) bool {
			return lending.IsOverdue(&b, time.Now())
		},
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RolePatron:
				return "Patron"
			default:
				return role
			}
		},
		"statusName": func(status string) string {
			switch status {
			case model.BorrowStatusBorrowed:
				return "On loan"
			case model.BorrowStatusReturned:
				return "Returned"
			case model.BorrowStatusHold:
				return "On hold"
			default:
				return status
			}
		},
	}
}

// formatCents renders an amount of cents as "12.50".
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"index.html",
		"book_detail.html",
		"add_book.html",
		"borrow_book.html",
		"borrows.html",
		"report.html",
		"login.html",
		"register.html",
		"patrons.html",
		"acquisitions.html",
		"users.html",
		"settings.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a template with a non-default status code, used when
// a form is shown again with an error.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title     string
	User      *auth.Claims
	Error     string
	Success   string
	Flashes   []Flash
	IsAdmin   bool
	CSRFField template.HTML
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB            *sql.DB
	Templates     *Templates
	JWTSecret     string
	Sessions      sessions.Store
	SecureCookies bool
}

// page builds the PageData for r, consuming any pending flash messages.
func (s *Server) page(w http.ResponseWriter, r *http.Request, title string) PageData {
	claims := GetWebClaims(r.Context())
	return PageData{
		Title:     title,
		User:      claims,
		IsAdmin:   claims.IsAdmin(),
		Flashes:   s.takeFlashes(w, r),
		CSRFField: csrf.TemplateField(r),
	}
}
