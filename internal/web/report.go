package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// ReportPage handles GET /report.
func (s *Server) ReportPage(w http.ResponseWriter, r *http.Request) {
	report, err := store.GetReport(r.Context(), s.DB, time.Now())
	if err != nil {
		slog.Error("failed to build report", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	active, err := store.ListBorrows(r.Context(), s.DB, store.BorrowFilter{Status: model.BorrowStatusBorrowed})
	if err != nil {
		slog.Error("failed to list active borrows", "error", err)
	}

	s.Templates.Render(w, "report.html", &struct {
		PageData
		Report *model.Report
		Active []model.Borrow
	}{
		PageData: s.page(w, r, "Report"),
		Report:   report,
		Active:   active,
	})
}
