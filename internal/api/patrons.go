package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// PatronsHandler handles patron registry endpoints.
type PatronsHandler struct {
	DB *sql.DB
}

type createPatronRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// List handles GET /api/patrons.
func (h *PatronsHandler) List(w http.ResponseWriter, r *http.Request) {
	patrons, err := store.ListPatrons(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if patrons == nil {
		patrons = []model.Patron{}
	}
	jsonResponse(w, http.StatusOK, patrons)
}

// Get handles GET /api/patrons/{id}.
func (h *PatronsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	patron, err := store.GetPatron(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if patron == nil {
		jsonError(w, http.StatusNotFound, "patron not found")
		return
	}
	jsonResponse(w, http.StatusOK, patron)
}

// Create handles POST /api/patrons.
func (h *PatronsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createPatronRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patron, err := store.CreatePatron(r.Context(), h.DB, req.Name, req.Email)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("patron registered", "user", claims.Username, "patron", patron.Name, "id", patron.ID)
	jsonResponse(w, http.StatusCreated, patron)
}
