package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/erazemk/knjiznica/internal/model"
)

func TestDecideCheckout(t *testing.T) {
	patron := &model.Patron{ID: 1, Name: "Ana"}
	available := &model.Book{ID: 1, Title: "The Hobbit", Available: true}
	lent := &model.Book{ID: 2, Title: "Dune", Available: false}

	assert.NoError(t, DecideCheckout(available, patron))
	assert.ErrorIs(t, DecideCheckout(lent, patron), model.ErrUnavailable)
	assert.ErrorIs(t, DecideCheckout(nil, patron), model.ErrNotFound)
	assert.ErrorIs(t, DecideCheckout(available, nil), model.ErrNotFound)
}

func TestDecideReturn(t *testing.T) {
	assert.NoError(t, DecideReturn(&model.Borrow{ID: 1, Status: model.BorrowStatusBorrowed}))
	assert.ErrorIs(t, DecideReturn(&model.Borrow{ID: 1, Status: model.BorrowStatusReturned}), model.ErrAlreadyReturned)
	assert.ErrorIs(t, DecideReturn(&model.Borrow{ID: 1, Status: model.BorrowStatusHold}), model.ErrInvalidTransition)
	assert.ErrorIs(t, DecideReturn(nil), model.ErrNotFound)
}

func TestDecideRenew(t *testing.T) {
	assert.NoError(t, DecideRenew(&model.Borrow{Status: model.BorrowStatusBorrowed}))
	assert.ErrorIs(t, DecideRenew(&model.Borrow{Status: model.BorrowStatusReturned}), model.ErrInvalidTransition)
	assert.ErrorIs(t, DecideRenew(&model.Borrow{Status: model.BorrowStatusHold}), model.ErrInvalidTransition)
	assert.ErrorIs(t, DecideRenew(nil), model.ErrNotFound)
}

func TestDecideHold(t *testing.T) {
	patron := &model.Patron{ID: 1}
	lent := &model.Book{ID: 2, Title: "Dune", Available: false}
	available := &model.Book{ID: 1, Title: "Emma", Available: true}

	assert.NoError(t, DecideHold(lent, patron, false))
	assert.ErrorIs(t, DecideHold(lent, patron, true), model.ErrInvalidTransition)
	assert.ErrorIs(t, DecideHold(available, patron, false), model.ErrInvalidTransition)
	assert.ErrorIs(t, DecideHold(nil, patron, false), model.ErrNotFound)
	assert.ErrorIs(t, DecideHold(lent, nil, false), model.ErrNotFound)
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	assert.True(t, IsOverdue(&model.Borrow{Status: model.BorrowStatusBorrowed, DueDate: yesterday}, now))
	assert.False(t, IsOverdue(&model.Borrow{Status: model.BorrowStatusBorrowed, DueDate: now}, now))
	assert.False(t, IsOverdue(&model.Borrow{Status: model.BorrowStatusReturned, DueDate: yesterday}, now))
	assert.False(t, IsOverdue(&model.Borrow{Status: model.BorrowStatusHold, DueDate: yesterday}, now))
}
