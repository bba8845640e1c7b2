package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

type patronsPage struct {
	PageData
	Patrons []model.Patron
	Name    string
	Email   string
}

func (s *Server) renderPatrons(w http.ResponseWriter, r *http.Request, status int, data *patronsPage) {
	patrons, err := store.ListPatrons(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list patrons", "error", err)
	}
	data.Patrons = patrons
	s.Templates.RenderStatus(w, status, "patrons.html", data)
}

// PatronsPage handles GET /patrons.
func (s *Server) PatronsPage(w http.ResponseWriter, r *http.Request) {
	s.renderPatrons(w, r, http.StatusOK, &patronsPage{PageData: s.page(w, r, "Patrons")})
}

// PatronCreateSubmit handles POST /patrons.
func (s *Server) PatronCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))

	patron, err := store.CreatePatron(r.Context(), s.DB, name, email)
	if err != nil {
		status, msg := describe(err)
		data := &patronsPage{PageData: s.page(w, r, "Patrons"), Name: name, Email: email}
		data.Error = msg
		s.renderPatrons(w, r, status, data)
		return
	}

	slog.Info("patron registered", "user", claims.Username, "patron", patron.Name, "id", patron.ID)
	s.flash(w, r, "success", "Registered patron "+patron.Name+".")
	http.Redirect(w, r, "/patrons", http.StatusSeeOther)
}
