package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// BooksHandler handles catalog endpoints.
type BooksHandler struct {
	DB *sql.DB
}

type createBookRequest struct {
	Title             string `json:"title"`
	Author            string `json:"author"`
	Category          string `json:"category"`
	MetadataFormat    string `json:"metadata_format"`
	Metadata          string `json:"metadata"`
	DigitalContentURL string `json:"digital_content_url"`
}

// List handles GET /api/books?search=.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := store.SearchBooks(r.Context(), h.DB, r.URL.Query().Get("search"))
	if err != nil {
		storeError(w, err)
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	jsonResponse(w, http.StatusOK, books)
}

// Get handles GET /api/books/{id}.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if book == nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}
	jsonResponse(w, http.StatusOK, book)
}

// Create handles POST /api/books.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createBookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MetadataFormat == "" {
		req.MetadataFormat = model.DefaultMetadataFormat
	}

	book, err := store.CreateBook(r.Context(), h.DB, store.NewBook(req))
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("book added", "user", claims.Username, "book", book.Title, "id", book.ID)
	jsonResponse(w, http.StatusCreated, book)
}
