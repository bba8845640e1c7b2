package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/knjiznica/internal/lending"
	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// BorrowsHandler handles lending endpoints.
type BorrowsHandler struct {
	DB *sql.DB
}

type checkoutRequest struct {
	BookID   int64 `json:"book_id"`
	PatronID int64 `json:"patron_id"`
}

// borrowResponse is a Borrow with dates in YYYY-MM-DD form.
type borrowResponse struct {
	ID         int64  `json:"id"`
	BookID     int64  `json:"book_id"`
	PatronID   int64  `json:"patron_id"`
	BookTitle  string `json:"book_title"`
	PatronName string `json:"patron_name"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date"`
	ReturnDate string `json:"return_date,omitempty"`
	FineCents  int64  `json:"fine_cents"`
	Status     string `json:"status"`
	Overdue    bool   `json:"overdue"`
}

func toBorrowResponse(b *model.Borrow, now time.Time) borrowResponse {
	resp := borrowResponse{
		ID:         b.ID,
		BookID:     b.BookID,
		PatronID:   b.PatronID,
		BookTitle:  b.BookTitle,
		PatronName: b.PatronName,
		BorrowDate: lending.FormatDate(b.BorrowDate),
		DueDate:    lending.FormatDate(b.DueDate),
		FineCents:  b.FineCents,
		Status:     b.Status,
		Overdue:    lending.IsOverdue(b, now),
	}
	if b.ReturnDate != nil {
		resp.ReturnDate = lending.FormatDate(*b.ReturnDate)
	}
	return resp
}

// Checkout handles POST /api/borrows.
func (h *BorrowsHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BookID <= 0 || req.PatronID <= 0 {
		jsonError(w, http.StatusBadRequest, "book_id and patron_id required")
		return
	}

	now := time.Now()
	borrow, err := store.Checkout(r.Context(), h.DB, req.BookID, req.PatronID, now)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("book borrowed", "user", claims.Username, "borrow", borrow.ID,
		"book", borrow.BookTitle, "patron", borrow.PatronName)
	jsonResponse(w, http.StatusCreated, toBorrowResponse(borrow, now))
}

// List handles GET /api/borrows?status=&patron_id=&book_id=.
func (h *BorrowsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.BorrowFilter{Status: q.Get("status")}
	if filter.Status != "" && !model.ValidBorrowStatus(filter.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	for key, dst := range map[string]*int64{"patron_id": &filter.PatronID, "book_id": &filter.BookID} {
		if v := q.Get(key); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				jsonError(w, http.StatusBadRequest, "invalid "+key)
				return
			}
			*dst = id
		}
	}

	borrows, err := store.ListBorrows(r.Context(), h.DB, filter)
	if err != nil {
		storeError(w, err)
		return
	}

	now := time.Now()
	resp := make([]borrowResponse, 0, len(borrows))
	for i := range borrows {
		resp = append(resp, toBorrowResponse(&borrows[i], now))
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Return handles POST /api/borrows/{id}/return.
func (h *BorrowsHandler) Return(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	now := time.Now()
	borrow, err := store.Return(r.Context(), h.DB, id, now)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("book returned", "user", claims.Username, "borrow", id, "fine_cents", borrow.FineCents)
	jsonResponse(w, http.StatusOK, toBorrowResponse(borrow, now))
}

// Renew handles POST /api/borrows/{id}/renew.
func (h *BorrowsHandler) Renew(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	borrow, err := store.Renew(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("borrow renewed", "user", claims.Username, "borrow", id, "due", lending.FormatDate(borrow.DueDate))
	jsonResponse(w, http.StatusOK, toBorrowResponse(borrow, time.Now()))
}
