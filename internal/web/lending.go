package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/knjiznica/internal/lending"
	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

type borrowBookPage struct {
	PageData
	Books    []model.Book
	Patrons  []model.Patron
	BookID   int64
	PatronID int64
}

func (s *Server) renderBorrowForm(w http.ResponseWriter, r *http.Request, status int, data *borrowBookPage) {
	var err error
	if data.Books, err = store.ListAvailableBooks(r.Context(), s.DB); err != nil {
		slog.Error("failed to list available books", "error", err)
	}
	if data.Patrons, err = store.ListPatrons(r.Context(), s.DB); err != nil {
		slog.Error("failed to list patrons", "error", err)
	}
	s.Templates.RenderStatus(w, status, "borrow_book.html", data)
}

// BorrowBookPage handles GET /borrow_book.
func (s *Server) BorrowBookPage(w http.ResponseWriter, r *http.Request) {
	data := &borrowBookPage{PageData: s.page(w, r, "Borrow a book")}
	data.BookID, _ = formID(r, "book_id")
	s.renderBorrowForm(w, r, http.StatusOK, data)
}

// BorrowBookSubmit handles POST /borrow_book.
func (s *Server) BorrowBookSubmit(w http.ResponseWriter, r *http.Request) {
	data := &borrowBookPage{PageData: s.page(w, r, "Borrow a book")}

	bookID, okBook := formID(r, "book_id")
	patronID, okPatron := formID(r, "patron_id")
	data.BookID, data.PatronID = bookID, patronID
	if !okBook || !okPatron {
		data.Error = "Choose a book and a patron."
		s.renderBorrowForm(w, r, http.StatusBadRequest, data)
		return
	}

	borrow, err := store.Checkout(r.Context(), s.DB, bookID, patronID, time.Now())
	if err != nil {
		status, msg := describe(err)
		slog.Warn("checkout refused", "book", bookID, "patron", patronID, "error", err)
		data.Error = msg
		s.renderBorrowForm(w, r, status, data)
		return
	}

	slog.Info("book borrowed", "borrow", borrow.ID, "book", borrow.BookTitle, "patron", borrow.PatronName,
		"due", lending.FormatDate(borrow.DueDate))
	s.flash(w, r, "success", fmt.Sprintf("%s borrowed %q, due %s.",
		borrow.PatronName, borrow.BookTitle, lending.FormatDate(borrow.DueDate)))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// BorrowsPage handles GET /borrows with optional ?status= and ?patron=.
func (s *Server) BorrowsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.BorrowFilter{Status: q.Get("status")}
	if filter.Status != "" && !model.ValidBorrowStatus(filter.Status) {
		filter.Status = ""
	}
	filter.PatronID, _ = formID(r, "patron")

	borrows, err := store.ListBorrows(r.Context(), s.DB, filter)
	if err != nil {
		slog.Error("failed to list borrows", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "borrows.html", &struct {
		PageData
		Borrows []model.Borrow
		Filter  store.BorrowFilter
	}{
		PageData: s.page(w, r, "Loans"),
		Borrows:  borrows,
		Filter:   filter,
	})
}

// ReturnSubmit handles POST /borrows/{id}/return.
func (s *Server) ReturnSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	borrow, err := store.Return(r.Context(), s.DB, id, time.Now())
	if err != nil {
		_, msg := describe(err)
		s.flash(w, r, "error", msg)
		http.Redirect(w, r, "/borrows", http.StatusSeeOther)
		return
	}

	slog.Info("book returned", "user", claims.Username, "borrow", id, "book", borrow.BookTitle,
		"fine_cents", borrow.FineCents)
	msg := fmt.Sprintf("%q returned.", borrow.BookTitle)
	if borrow.FineCents > 0 {
		msg = fmt.Sprintf("%q returned late, fine %s.", borrow.BookTitle, formatCents(borrow.FineCents))
	}
	s.flash(w, r, "success", msg)
	http.Redirect(w, r, "/borrows", http.StatusSeeOther)
}

// RenewSubmit handles POST /borrows/{id}/renew.
func (s *Server) RenewSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	borrow, err := store.Renew(r.Context(), s.DB, id)
	if err != nil {
		_, msg := describe(err)
		s.flash(w, r, "error", msg)
		http.Redirect(w, r, "/borrows", http.StatusSeeOther)
		return
	}

	due := lending.FormatDate(borrow.DueDate)
	slog.Info("borrow renewed", "user", claims.Username, "borrow", id, "due", due)
	s.flash(w, r, "success", fmt.Sprintf("%q is now due %s.", borrow.BookTitle, due))
	http.Redirect(w, r, "/borrows", http.StatusSeeOther)
}

// HoldSubmit handles POST /hold.
func (s *Server) HoldSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	bookID, okBook := formID(r, "book_id")
	patronID, okPatron := formID(r, "patron_id")
	back := "/borrows"
	if okBook {
		back = fmt.Sprintf("/books/%d", bookID)
	}
	if !okBook || !okPatron {
		s.flash(w, r, "error", "Choose a book and a patron.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	hold, err := store.PlaceHold(r.Context(), s.DB, bookID, patronID, time.Now())
	if err != nil {
		_, msg := describe(err)
		s.flash(w, r, "error", msg)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	slog.Info("hold placed", "user", claims.Username, "book", hold.BookTitle, "patron", hold.PatronName)
	s.flash(w, r, "success", fmt.Sprintf("%q is on hold for %s.", hold.BookTitle, hold.PatronName))
	http.Redirect(w, r, back, http.StatusSeeOther)
}
