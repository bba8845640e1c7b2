package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/knjiznica/internal/model"
)

// CreatePatron registers a library member. Emails are unique ignoring case.
func CreatePatron(ctx context.Context, db *sql.DB, name, email string) (*model.Patron, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", model.ErrValidation)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO patrons (name, email) VALUES (?, ?)`, name, email,
	)
	if isUniqueViolation(err) {
		return nil, model.ErrDuplicateIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("creating patron: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting patron id: %w", err)
	}

	return GetPatron(ctx, db, id)
}

// GetPatron returns a patron by ID.
func GetPatron(ctx context.Context, db *sql.DB, id int64) (*model.Patron, error) {
	return getPatron(ctx, db, id)
}

func getPatron(ctx context.Context, q querier, id int64) (*model.Patron, error) {
	p := &model.Patron{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM patrons WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Email, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting patron: %w", err)
	}
	return p, nil
}

// ListPatrons returns all patrons ordered by name.
func ListPatrons(ctx context.Context, db *sql.DB) ([]model.Patron, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, email, created_at FROM patrons ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing patrons: %w", err)
	}
	defer rows.Close()

	var patrons []model.Patron
	for rows.Next() {
		var p model.Patron
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning patron: %w", err)
		}
		patrons = append(patrons, p)
	}
	return patrons, rows.Err()
}
