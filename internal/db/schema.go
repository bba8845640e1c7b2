package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'patron' CHECK (role IN ('admin', 'patron')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS patrons (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL UNIQUE COLLATE NOCASE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS books (
    id                  INTEGER PRIMARY KEY,
    title               TEXT NOT NULL,
    author              TEXT NOT NULL,
    category            TEXT NOT NULL,
    available           INTEGER NOT NULL DEFAULT 1 CHECK (available IN (0, 1)),
    metadata_format     TEXT NOT NULL DEFAULT 'Dublin Core',
    metadata            TEXT NOT NULL DEFAULT '',
    digital_content_url TEXT,
    cover               BLOB,
    cover_mime          TEXT,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS borrows (
    id          INTEGER PRIMARY KEY,
    book_id     INTEGER NOT NULL REFERENCES books(id),
    patron_id   INTEGER NOT NULL REFERENCES patrons(id),
    borrow_date TEXT NOT NULL,
    due_date    TEXT NOT NULL,
    return_date TEXT,
    fine_cents  INTEGER NOT NULL DEFAULT 0 CHECK (fine_cents >= 0),
    status      TEXT NOT NULL DEFAULT 'borrowed' CHECK (status IN ('borrowed', 'returned', 'hold')),
    CHECK (status <> 'borrowed' OR return_date IS NULL),
    CHECK (status <> 'returned' OR return_date IS NOT NULL)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_borrows_active_book
    ON borrows(book_id) WHERE status = 'borrowed';

CREATE INDEX IF NOT EXISTS idx_borrows_status_due
    ON borrows(status, due_date);

CREATE TABLE IF NOT EXISTS acquisitions (
    id              INTEGER PRIMARY KEY,
    vendor          TEXT NOT NULL,
    budget_cents    INTEGER NOT NULL CHECK (budget_cents >= 0),
    books_purchased TEXT NOT NULL DEFAULT '[]',
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
