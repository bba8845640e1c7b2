package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

type acquisitionsPage struct {
	PageData
	Acquisitions []model.Acquisition
	Books        []model.Book
	Titles       map[int64]string
	Vendor       string
	Budget       string
}

func (s *Server) renderAcquisitions(w http.ResponseWriter, r *http.Request, status int, data *acquisitionsPage) {
	var err error
	if data.Acquisitions, err = store.ListAcquisitions(r.Context(), s.DB); err != nil {
		slog.Error("failed to list acquisitions", "error", err)
	}
	if data.Books, err = store.ListBooks(r.Context(), s.DB); err != nil {
		slog.Error("failed to list books", "error", err)
	}
	data.Titles = make(map[int64]string, len(data.Books))
	for _, b := range data.Books {
		data.Titles[b.ID] = b.Title
	}
	s.Templates.RenderStatus(w, status, "acquisitions.html", data)
}

// AcquisitionsPage handles GET /acquisitions.
func (s *Server) AcquisitionsPage(w http.ResponseWriter, r *http.Request) {
	s.renderAcquisitions(w, r, http.StatusOK, &acquisitionsPage{PageData: s.page(w, r, "Acquisitions")})
}

// AcquisitionCreateSubmit handles POST /acquisitions.
func (s *Server) AcquisitionCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	vendor := strings.TrimSpace(r.PostFormValue("vendor"))
	budget := strings.TrimSpace(r.PostFormValue("budget"))
	data := &acquisitionsPage{PageData: s.page(w, r, "Acquisitions"), Vendor: vendor, Budget: budget}

	cents, err := parseCents(budget)
	if err != nil {
		data.Error = "Budget must be an amount like 150.00."
		s.renderAcquisitions(w, r, http.StatusBadRequest, data)
		return
	}

	var bookIDs []int64
	for _, v := range r.PostForm["book_ids"] {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			data.Error = "Invalid book selection."
			s.renderAcquisitions(w, r, http.StatusBadRequest, data)
			return
		}
		bookIDs = append(bookIDs, id)
	}

	acq, err := store.CreateAcquisition(r.Context(), s.DB, vendor, cents, bookIDs)
	if err != nil {
		status, msg := describe(err)
		data.Error = msg
		s.renderAcquisitions(w, r, status, data)
		return
	}

	slog.Info("acquisition recorded", "user", claims.Username, "vendor", acq.Vendor,
		"budget_cents", acq.BudgetCents, "books", len(acq.BooksPurchased))
	s.flash(w, r, "success", fmt.Sprintf("Recorded acquisition from %s.", acq.Vendor))
	http.Redirect(w, r, "/acquisitions", http.StatusSeeOther)
}

// parseCents parses a non-negative decimal amount with at most two
// fraction digits ("12", "12.5", "12.50") into cents.
func parseCents(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseUint(whole, 10, 62)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	var cents uint64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("amount %q must have one or two decimals", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		if cents, err = strconv.ParseUint(frac, 10, 8); err != nil {
			return 0, fmt.Errorf("parsing amount %q: %w", s, err)
		}
	}
	return int64(units*100 + cents), nil
}
