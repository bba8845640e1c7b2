package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/knjiznica/internal/store"
)

// ReportHandler serves library statistics.
type ReportHandler struct {
	DB *sql.DB
}

// Get handles GET /api/report.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := store.GetReport(r.Context(), h.DB, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}
