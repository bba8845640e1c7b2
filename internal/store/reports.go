package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/knjiznica/internal/lending"
	"github.com/erazemk/knjiznica/internal/model"
)

// GetReport gathers the aggregate counts. A borrow is overdue when it is
// still out and its due date is before today.
func GetReport(ctx context.Context, db *sql.DB, now time.Time) (*model.Report, error) {
	r := &model.Report{}
	today := lending.FormatDate(lending.Today(now))

	counts := []struct {
		dest  any
		query string
		args  []any
	}{
		{&r.TotalBooks, `SELECT COUNT(*) FROM books`, nil},
		{&r.TotalPatrons, `SELECT COUNT(*) FROM patrons`, nil},
		{&r.TotalBorrows, `SELECT COUNT(*) FROM borrows`, nil},
		{&r.OverdueBorrows, `SELECT COUNT(*) FROM borrows WHERE status = ? AND due_date < ?`,
			[]any{model.BorrowStatusBorrowed, today}},
		{&r.ActiveBorrows, `SELECT COUNT(*) FROM borrows WHERE status = ?`,
			[]any{model.BorrowStatusBorrowed}},
		{&r.FinesTotalCents, `SELECT COALESCE(SUM(fine_cents), 0) FROM borrows`, nil},
	}

	for _, c := range counts {
		if err := db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("building report: %w", err)
		}
	}
	return r, nil
}
