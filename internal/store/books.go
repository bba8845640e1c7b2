package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/erazemk/knjiznica/internal/model"
)

// NewBook holds the fields supplied when cataloging a book.
type NewBook struct {
	Title             string
	Author            string
	Category          string
	MetadataFormat    string
	Metadata          string
	DigitalContentURL string
}

func (b *NewBook) normalize() error {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Category = strings.TrimSpace(b.Category)
	b.MetadataFormat = strings.TrimSpace(b.MetadataFormat)
	b.Metadata = strings.TrimSpace(b.Metadata)
	b.DigitalContentURL = strings.TrimSpace(b.DigitalContentURL)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", b.Title},
		{"author", b.Author},
		{"category", b.Category},
		{"metadata_format", b.MetadataFormat},
		{"book_metadata", b.Metadata},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", model.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

var bookColumns = []any{
	"id", "title", "author", "category", "available",
	"metadata_format", "metadata", "digital_content_url", "cover_mime", "created_at",
}

// CreateBook adds a book to the catalog. New books are available.
func CreateBook(ctx context.Context, db *sql.DB, nb NewBook) (*model.Book, error) {
	if err := nb.normalize(); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO books (title, author, category, metadata_format, metadata, digital_content_url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nb.Title, nb.Author, nb.Category, nb.MetadataFormat, nb.Metadata, nullString(nb.DigitalContentURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	return GetBook(ctx, db, id)
}

// GetBook returns a book by ID.
func GetBook(ctx context.Context, db *sql.DB, id int64) (*model.Book, error) {
	return getBook(ctx, db, id)
}

func getBook(ctx context.Context, q querier, id int64) (*model.Book, error) {
	query, args, err := dialect.From("books").Prepared(true).
		Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building book query: %w", err)
	}

	b, err := scanBook(q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	return b, nil
}

// SearchBooks returns books whose title or author contains text, ignoring
// case. An empty text returns the whole catalog. Results are in insertion
// order.
func SearchBooks(ctx context.Context, db *sql.DB, text string) ([]model.Book, error) {
	ds := dialect.From("books").Prepared(true).
		Select(bookColumns...).
		Order(goqu.C("id").Asc())

	if needle := strings.ToLower(strings.TrimSpace(text)); needle != "" {
		ds = ds.Where(goqu.Or(
			goqu.Func("INSTR", goqu.Func("LOWER", goqu.C("title")), needle).Gt(0),
			goqu.Func("INSTR", goqu.Func("LOWER", goqu.C("author")), needle).Gt(0),
		))
	}

	return queryBooks(ctx, db, ds)
}

// ListBooks returns the whole catalog.
func ListBooks(ctx context.Context, db *sql.DB) ([]model.Book, error) {
	return SearchBooks(ctx, db, "")
}

// ListAvailableBooks returns books that can be checked out right now.
func ListAvailableBooks(ctx context.Context, db *sql.DB) ([]model.Book, error) {
	ds := dialect.From("books").Prepared(true).
		Select(bookColumns...).
		Where(goqu.C("available").Eq(1)).
		Order(goqu.C("title").Asc())
	return queryBooks(ctx, db, ds)
}

// ListUnavailableBooks returns books that are currently lent out.
func ListUnavailableBooks(ctx context.Context, db *sql.DB) ([]model.Book, error) {
	ds := dialect.From("books").Prepared(true).
		Select(bookColumns...).
		Where(goqu.C("available").Eq(0)).
		Order(goqu.C("title").Asc())
	return queryBooks(ctx, db, ds)
}

func queryBooks(ctx context.Context, db *sql.DB, ds *goqu.SelectDataset) ([]model.Book, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building book query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*model.Book, error) {
	b := &model.Book{}
	var url, coverMime sql.NullString
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.Available,
		&b.MetadataFormat, &b.Metadata, &url, &coverMime, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.DigitalContentURL = url.String
	b.CoverMime = coverMime.String
	return b, nil
}

// SetBookCover stores a processed cover image for a book.
func SetBookCover(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ? WHERE id = ?`, image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	return requireAffected(result, "book")
}

// GetBookCover returns a book's cover image and MIME type. Data is nil when
// the book has no cover.
func GetBookCover(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return image, mime.String, nil
}
