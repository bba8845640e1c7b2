package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/erazemk/knjiznica/internal/lending"
	"github.com/erazemk/knjiznica/internal/model"
)

// Checkout lends a book to a patron. The availability flip and the borrow
// insert happen in one IMMEDIATE transaction, and the flip is a conditional
// UPDATE, so concurrent checkouts of the same book yield exactly one borrow.
func Checkout(ctx context.Context, db *sql.DB, bookID, patronID int64, now time.Time) (*model.Borrow, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	patron, err := getPatron(ctx, tx, patronID)
	if err != nil {
		return nil, err
	}
	book, err := getBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if err := lending.DecideCheckout(book, patron); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE books SET available = 0 WHERE id = ? AND available = 1`, bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("marking book unavailable: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("checking affected rows: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("%w: %q is already borrowed", model.ErrUnavailable, book.Title)
	}

	today := lending.Today(now)
	result, err = tx.ExecContext(ctx,
		`INSERT INTO borrows (book_id, patron_id, borrow_date, due_date, fine_cents, status)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		bookID, patronID, lending.FormatDate(today), lending.FormatDate(lending.DueDate(today)),
		model.BorrowStatusBorrowed,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %q is already borrowed", model.ErrUnavailable, book.Title)
	}
	if err != nil {
		return nil, fmt.Errorf("recording borrow: %w", err)
	}

	borrowID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting borrow id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checkout: %w", err)
	}

	return GetBorrow(ctx, db, borrowID)
}

// Return closes an active borrow: it sets the return date, charges the late
// fine at the configured daily rate and makes the book available again.
// Returning a borrow twice fails with ErrAlreadyReturned.
func Return(ctx context.Context, db *sql.DB, borrowID int64, now time.Time) (*model.Borrow, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	b, err := getBorrow(ctx, tx, borrowID)
	if err != nil {
		return nil, err
	}
	if err := lending.DecideReturn(b); err != nil {
		return nil, err
	}

	rate, err := finePerDay(ctx, tx)
	if err != nil {
		return nil, err
	}

	today := lending.Today(now)
	fine := lending.Fine(b.DueDate, today, rate)

	result, err := tx.ExecContext(ctx,
		`UPDATE borrows SET return_date = ?, status = ?, fine_cents = ?
		 WHERE id = ? AND status = ?`,
		lending.FormatDate(today), model.BorrowStatusReturned, fine,
		borrowID, model.BorrowStatusBorrowed,
	)
	if err != nil {
		return nil, fmt.Errorf("closing borrow: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("checking affected rows: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("%w: borrow %d", model.ErrAlreadyReturned, borrowID)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET available = 1 WHERE id = ?`, b.BookID,
	); err != nil {
		return nil, fmt.Errorf("marking book available: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing return: %w", err)
	}

	return GetBorrow(ctx, db, borrowID)
}

// Renew moves the due date of an active borrow forward by one extension
// period.
func Renew(ctx context.Context, db *sql.DB, borrowID int64) (*model.Borrow, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	b, err := getBorrow(ctx, tx, borrowID)
	if err != nil {
		return nil, err
	}
	if err := lending.DecideRenew(b); err != nil {
		return nil, err
	}

	due, err := lending.ExtendDueDate(lending.FormatDate(b.DueDate))
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE borrows SET due_date = ? WHERE id = ?`, due, borrowID,
	); err != nil {
		return nil, fmt.Errorf("extending due date: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing renewal: %w", err)
	}

	return GetBorrow(ctx, db, borrowID)
}

// PlaceHold records a reservation of a lent-out book for a patron. Holds do
// not change availability and have no further transitions.
func PlaceHold(ctx context.Context, db *sql.DB, bookID, patronID int64, now time.Time) (*model.Borrow, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	patron, err := getPatron(ctx, tx, patronID)
	if err != nil {
		return nil, err
	}
	book, err := getBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}

	var held int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrows WHERE book_id = ? AND patron_id = ? AND status = ?`,
		bookID, patronID, model.BorrowStatusHold,
	).Scan(&held)
	if err != nil {
		return nil, fmt.Errorf("checking existing holds: %w", err)
	}

	if err := lending.DecideHold(book, patron, held > 0); err != nil {
		return nil, err
	}

	today := lending.FormatDate(lending.Today(now))
	result, err := tx.ExecContext(ctx,
		`INSERT INTO borrows (book_id, patron_id, borrow_date, due_date, fine_cents, status)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		bookID, patronID, today, today, model.BorrowStatusHold,
	)
	if err != nil {
		return nil, fmt.Errorf("recording hold: %w", err)
	}

	holdID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting hold id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing hold: %w", err)
	}

	return GetBorrow(ctx, db, holdID)
}

// BorrowFilter narrows ListBorrows. Zero values match everything.
type BorrowFilter struct {
	Status   string
	BookID   int64
	PatronID int64
}

func borrowsQuery() *goqu.SelectDataset {
	return dialect.From(goqu.T("borrows").As("br")).Prepared(true).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("br.book_id")))).
		Join(goqu.T("patrons").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("br.patron_id")))).
		Select(
			goqu.I("br.id"), goqu.I("br.book_id"), goqu.I("br.patron_id"),
			goqu.I("br.borrow_date"), goqu.I("br.due_date"), goqu.I("br.return_date"),
			goqu.I("br.fine_cents"), goqu.I("br.status"),
			goqu.I("b.title"), goqu.I("p.name"),
		)
}

// GetBorrow returns a borrow by ID, with book title and patron name.
func GetBorrow(ctx context.Context, db *sql.DB, id int64) (*model.Borrow, error) {
	return getBorrow(ctx, db, id)
}

func getBorrow(ctx context.Context, q querier, id int64) (*model.Borrow, error) {
	query, args, err := borrowsQuery().Where(goqu.I("br.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building borrow query: %w", err)
	}

	b, err := scanBorrow(q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting borrow: %w", err)
	}
	return b, nil
}

// ListBorrows returns borrows matching f, newest first.
func ListBorrows(ctx context.Context, db *sql.DB, f BorrowFilter) ([]model.Borrow, error) {
	ds := borrowsQuery().Order(goqu.I("br.id").Desc())
	if f.Status != "" {
		ds = ds.Where(goqu.I("br.status").Eq(f.Status))
	}
	if f.BookID > 0 {
		ds = ds.Where(goqu.I("br.book_id").Eq(f.BookID))
	}
	if f.PatronID > 0 {
		ds = ds.Where(goqu.I("br.patron_id").Eq(f.PatronID))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building borrow query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing borrows: %w", err)
	}
	defer rows.Close()

	var borrows []model.Borrow
	for rows.Next() {
		b, err := scanBorrow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning borrow: %w", err)
		}
		borrows = append(borrows, *b)
	}
	return borrows, rows.Err()
}

func scanBorrow(row rowScanner) (*model.Borrow, error) {
	b := &model.Borrow{}
	var borrowDate, dueDate string
	var returnDate sql.NullString
	if err := row.Scan(&b.ID, &b.BookID, &b.PatronID, &borrowDate, &dueDate, &returnDate,
		&b.FineCents, &b.Status, &b.BookTitle, &b.PatronName); err != nil {
		return nil, err
	}

	var err error
	if b.BorrowDate, err = lending.ParseDate(borrowDate); err != nil {
		return nil, err
	}
	if b.DueDate, err = lending.ParseDate(dueDate); err != nil {
		return nil, err
	}
	if returnDate.Valid {
		rd, err := lending.ParseDate(returnDate.String)
		if err != nil {
			return nil, err
		}
		b.ReturnDate = &rd
	}
	return b, nil
}
