package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/knjiznica/internal/db"
)

func TestGetReportEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	report, err := GetReport(context.Background(), database, fixedNow)
	require.NoError(t, err)
	assert.Zero(t, report.TotalBooks)
	assert.Zero(t, report.TotalPatrons)
	assert.Zero(t, report.TotalBorrows)
	assert.Zero(t, report.OverdueBorrows)
}

func TestGetReportOverdue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	late := mustCreateBook(t, database, "Late", "Anon")
	onTime := mustCreateBook(t, database, "On time", "Anon")
	mustCreateBook(t, database, "Shelf", "Anon")
	patron := mustCreatePatron(t, database, "Ana", "ana@example.com")

	// Borrowed 15 days ago, so it was due yesterday.
	overdue, err := Checkout(ctx, database, late.ID, patron.ID, fixedNow.AddDate(0, 0, -15))
	require.NoError(t, err)
	_, err = Checkout(ctx, database, onTime.ID, patron.ID, fixedNow)
	require.NoError(t, err)

	report, err := GetReport(ctx, database, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalBooks)
	assert.Equal(t, 1, report.TotalPatrons)
	assert.Equal(t, 2, report.TotalBorrows)
	assert.Equal(t, 2, report.ActiveBorrows)
	assert.Equal(t, 1, report.OverdueBorrows)

	// Due today is not overdue yet.
	report, _ = GetReport(ctx, database, fixedNow.AddDate(0, 0, -1))
	assert.Zero(t, report.OverdueBorrows)

	_, err = Return(ctx, database, overdue.ID, fixedNow)
	require.NoError(t, err)

	report, err = GetReport(ctx, database, fixedNow)
	require.NoError(t, err)
	assert.Zero(t, report.OverdueBorrows, "returned borrows are never overdue")
	assert.Equal(t, 2, report.TotalBorrows)
	assert.Equal(t, 1, report.ActiveBorrows)
	assert.Equal(t, int64(DefaultFinePerDayCents), report.FinesTotalCents)
}
