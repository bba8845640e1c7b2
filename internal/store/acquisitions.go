package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/erazemk/knjiznica/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CreateAcquisition records a purchase. Every purchased book must already be
// in the catalog.
func CreateAcquisition(ctx context.Context, db *sql.DB, vendor string, budgetCents int64, bookIDs []int64) (*model.Acquisition, error) {
	vendor = strings.TrimSpace(vendor)
	if vendor == "" {
		return nil, fmt.Errorf("%w: vendor is required", model.ErrValidation)
	}
	if budgetCents < 0 {
		return nil, fmt.Errorf("%w: budget must not be negative", model.ErrValidation)
	}
	if bookIDs == nil {
		bookIDs = []int64{}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range bookIDs {
		book, err := getBook(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, fmt.Errorf("%w: book %d", model.ErrNotFound, id)
		}
	}

	purchased, err := json.Marshal(bookIDs)
	if err != nil {
		return nil, fmt.Errorf("encoding purchased books: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO acquisitions (vendor, budget_cents, books_purchased) VALUES (?, ?, ?)`,
		vendor, budgetCents, string(purchased),
	)
	if err != nil {
		return nil, fmt.Errorf("creating acquisition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting acquisition id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing acquisition: %w", err)
	}

	return GetAcquisition(ctx, db, id)
}

// GetAcquisition returns an acquisition by ID.
func GetAcquisition(ctx context.Context, db *sql.DB, id int64) (*model.Acquisition, error) {
	a, err := scanAcquisition(db.QueryRowContext(ctx,
		`SELECT id, vendor, budget_cents, books_purchased, created_at FROM acquisitions WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting acquisition: %w", err)
	}
	return a, nil
}

// ListAcquisitions returns all acquisitions, newest first.
func ListAcquisitions(ctx context.Context, db *sql.DB) ([]model.Acquisition, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, vendor, budget_cents, books_purchased, created_at FROM acquisitions ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing acquisitions: %w", err)
	}
	defer rows.Close()

	var acquisitions []model.Acquisition
	for rows.Next() {
		a, err := scanAcquisition(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning acquisition: %w", err)
		}
		acquisitions = append(acquisitions, *a)
	}
	return acquisitions, rows.Err()
}

func scanAcquisition(row rowScanner) (*model.Acquisition, error) {
	a := &model.Acquisition{}
	var purchased string
	if err := row.Scan(&a.ID, &a.Vendor, &a.BudgetCents, &purchased, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.UnmarshalFromString(purchased, &a.BooksPurchased); err != nil {
		return nil, fmt.Errorf("decoding purchased books: %w", err)
	}
	return a, nil
}
