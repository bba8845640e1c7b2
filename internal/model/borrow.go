package model

import "time"

// Borrow is one lending record of a book to a patron.
type Borrow struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	PatronID   int64      `json:"patron_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	FineCents  int64      `json:"fine_cents"`
	Status     string     `json:"status"`

	// Joined fields (not always populated).
	BookTitle  string `json:"book_title,omitempty"`
	PatronName string `json:"patron_name,omitempty"`
}

// Borrow statuses.
const (
	BorrowStatusBorrowed = "borrowed"
	BorrowStatusReturned = "returned"
	BorrowStatusHold     = "hold"
)

// ValidBorrowStatus reports whether s is a known borrow status.
func ValidBorrowStatus(s string) bool {
	switch s {
	case BorrowStatusBorrowed, BorrowStatusReturned, BorrowStatusHold:
		return true
	}
	return false
}
