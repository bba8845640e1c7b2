package lending

import (
	"fmt"
	"time"

	"github.com/erazemk/knjiznica/internal/model"
)

// The Decide functions are pure: they look at the current state and return
// nil if the transition is allowed, or a wrapped model error explaining the
// refusal. The store applies the transition inside a transaction.

// DecideCheckout checks that book can be lent to patron.
func DecideCheckout(book *model.Book, patron *model.Patron) error {
	if patron == nil {
		return fmt.Errorf("%w: patron", model.ErrNotFound)
	}
	if book == nil {
		return fmt.Errorf("%w: book", model.ErrNotFound)
	}
	if !book.Available {
		return fmt.Errorf("%w: %q is already borrowed", model.ErrUnavailable, book.Title)
	}
	return nil
}

// DecideReturn checks that b can be closed.
func DecideReturn(b *model.Borrow) error {
	if b == nil {
		return fmt.Errorf("%w: borrow", model.ErrNotFound)
	}
	switch b.Status {
	case model.BorrowStatusBorrowed:
		return nil
	case model.BorrowStatusReturned:
		return fmt.Errorf("%w: borrow %d", model.ErrAlreadyReturned, b.ID)
	default:
		return fmt.Errorf("%w: cannot return a borrow with status %q", model.ErrInvalidTransition, b.Status)
	}
}

// DecideRenew checks that the due date of b can be extended.
func DecideRenew(b *model.Borrow) error {
	if b == nil {
		return fmt.Errorf("%w: borrow", model.ErrNotFound)
	}
	if b.Status != model.BorrowStatusBorrowed {
		return fmt.Errorf("%w: cannot renew a borrow with status %q", model.ErrInvalidTransition, b.Status)
	}
	return nil
}

// DecideHold checks that patron may reserve book. Holds are only placed on
// books that are currently lent out, once per patron and book.
func DecideHold(book *model.Book, patron *model.Patron, alreadyHeld bool) error {
	if patron == nil {
		return fmt.Errorf("%w: patron", model.ErrNotFound)
	}
	if book == nil {
		return fmt.Errorf("%w: book", model.ErrNotFound)
	}
	if book.Available {
		return fmt.Errorf("%w: %q is available, check it out instead", model.ErrInvalidTransition, book.Title)
	}
	if alreadyHeld {
		return fmt.Errorf("%w: patron already holds %q", model.ErrInvalidTransition, book.Title)
	}
	return nil
}

// IsOverdue reports whether b is still out past its due date.
func IsOverdue(b *model.Borrow, now time.Time) bool {
	return b.Status == model.BorrowStatusBorrowed && Today(b.DueDate).Before(Today(now))
}
