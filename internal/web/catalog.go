package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/knjiznica/internal/imaging"
	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// Index handles GET /, the catalog listing with optional ?search=.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	books, err := store.SearchBooks(r.Context(), s.DB, search)
	if err != nil {
		slog.Error("failed to search books", "search", search, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "index.html", &struct {
		PageData
		Search string
		Books  []model.Book
	}{
		PageData: s.page(w, r, "Catalog"),
		Search:   search,
		Books:    books,
	})
}

// BookDetailPage handles GET /books/{id}.
func (s *Server) BookDetailPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	book, err := store.GetBook(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get book", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if book == nil {
		http.Error(w, "book not found", http.StatusNotFound)
		return
	}

	data := &struct {
		PageData
		Book    *model.Book
		History []model.Borrow
		Patrons []model.Patron
	}{
		PageData: s.page(w, r, book.Title),
		Book:     book,
	}

	// Loan history and the hold form are for librarians only.
	if data.IsAdmin {
		if data.History, err = store.ListBorrows(r.Context(), s.DB, store.BorrowFilter{BookID: id}); err != nil {
			slog.Error("failed to list book history", "id", id, "error", err)
		}
		if data.Patrons, err = store.ListPatrons(r.Context(), s.DB); err != nil {
			slog.Error("failed to list patrons", "error", err)
		}
	}

	s.Templates.Render(w, "book_detail.html", data)
}

type addBookPage struct {
	PageData
	Form store.NewBook
}

// AddBookPage handles GET /add_book.
func (s *Server) AddBookPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "add_book.html", &addBookPage{
		PageData: s.page(w, r, "Add book"),
		Form:     store.NewBook{MetadataFormat: model.DefaultMetadataFormat},
	})
}

// AddBookSubmit handles POST /add_book.
func (s *Server) AddBookSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	nb := store.NewBook{
		Title:             r.FormValue("title"),
		Author:            r.FormValue("author"),
		Category:          r.FormValue("category"),
		MetadataFormat:    r.FormValue("metadata_format"),
		Metadata:          r.FormValue("book_metadata"),
		DigitalContentURL: r.FormValue("digital_content_url"),
	}

	book, err := store.CreateBook(r.Context(), s.DB, nb)
	if err != nil {
		status, msg := describe(err)
		data := &addBookPage{PageData: s.page(w, r, "Add book"), Form: nb}
		data.Error = msg
		s.Templates.RenderStatus(w, status, "add_book.html", data)
		return
	}

	slog.Info("book added", "user", claims.Username, "book", book.Title, "id", book.ID)
	s.flash(w, r, "success", fmt.Sprintf("Added %q to the catalog.", book.Title))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// BookCoverSubmit handles POST /books/{id}/cover.
func (s *Server) BookCoverSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	back := fmt.Sprintf("/books/%d", id)

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		s.flash(w, r, "error", "Cover upload is too large.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	file, _, err := r.FormFile("cover")
	if err != nil {
		s.flash(w, r, "error", "Choose an image to upload.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	defer file.Close()

	cover, err := imaging.ProcessCover(file)
	if err != nil {
		msg := "The cover must be a JPEG, PNG or WebP image."
		if errors.Is(err, imaging.ErrTooLarge) {
			msg = "Cover upload is too large."
		}
		slog.Warn("cover rejected", "book", id, "error", err)
		s.flash(w, r, "error", msg)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if err := store.SetBookCover(r.Context(), s.DB, id, cover.Data, cover.MIME); err != nil {
		_, msg := describe(err)
		s.flash(w, r, "error", msg)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	slog.Info("book cover uploaded", "user", claims.Username, "book", id)
	s.flash(w, r, "success", "Cover updated.")
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// BookCoverGet handles GET /books/{id}/cover.
func (s *Server) BookCoverGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetBookCover(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get cover", "book", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write cover response", "error", err)
	}
}
