package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/knjiznica/internal/db"
	"github.com/erazemk/knjiznica/internal/model"
)

func newBook(title, author string) NewBook {
	return NewBook{
		Title:          title,
		Author:         author,
		Category:       "Fiction",
		MetadataFormat: model.DefaultMetadataFormat,
		Metadata:       "dc:title=" + title,
	}
}

func mustCreateBook(t *testing.T, database *sql.DB, title, author string) *model.Book {
	t.Helper()
	b, err := CreateBook(context.Background(), database, newBook(title, author))
	require.NoError(t, err)
	return b
}

func TestCreateAndGetBook(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	nb := newBook("The Hobbit", "J.R.R. Tolkien")
	nb.DigitalContentURL = "https://example.com/hobbit.epub"
	book, err := CreateBook(ctx, database, nb)
	require.NoError(t, err)

	assert.NotZero(t, book.ID)
	assert.True(t, book.Available)
	assert.Equal(t, "https://example.com/hobbit.epub", book.DigitalContentURL)

	got, err := GetBook(ctx, database, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", got.Title)
	assert.False(t, got.HasCover())

	missing, err := GetBook(ctx, database, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateBookRequiresFields(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateBook(ctx, database, NewBook{Title: "Only a title"})
	assert.ErrorIs(t, err, model.ErrValidation)

	nb := newBook("No URL", "Anon")
	nb.DigitalContentURL = ""
	_, err = CreateBook(ctx, database, nb)
	assert.NoError(t, err, "digital content URL is optional")
}

func TestSearchBooks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hobbit := mustCreateBook(t, database, "The Hobbit", "J.R.R. Tolkien")
	mustCreateBook(t, database, "Emma", "Jane Austen")
	rings := mustCreateBook(t, database, "The Two Towers", "J.R.R. Tolkien")

	found, err := SearchBooks(ctx, database, "tolkien")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, hobbit.ID, found[0].ID)
	assert.Equal(t, rings.ID, found[1].ID)

	found, _ = SearchBooks(ctx, database, "EMM")
	require.Len(t, found, 1)
	assert.Equal(t, "Emma", found[0].Title)

	// Wildcard characters are matched literally.
	found, _ = SearchBooks(ctx, database, "%")
	assert.Empty(t, found)

	all, _ := SearchBooks(ctx, database, "  ")
	assert.Len(t, all, 3)

	listed, _ := ListBooks(ctx, database)
	assert.Len(t, listed, 3)
}

func TestListAvailableBooks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := mustCreateBook(t, database, "A", "X")
	mustCreateBook(t, database, "B", "Y")
	p, _ := CreatePatron(ctx, database, "Ana", "ana@example.com")

	_, err := Checkout(ctx, database, a.ID, p.ID, fixedNow)
	require.NoError(t, err)

	available, _ := ListAvailableBooks(ctx, database)
	require.Len(t, available, 1)
	assert.Equal(t, "B", available[0].Title)

	lent, _ := ListUnavailableBooks(ctx, database)
	require.Len(t, lent, 1)
	assert.Equal(t, "A", lent[0].Title)
}

func TestBookCover(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	book := mustCreateBook(t, database, "Covered", "Anon")
	require.NoError(t, SetBookCover(ctx, database, book.ID, []byte("fake image"), "image/jpeg"))

	data, mime, err := GetBookCover(ctx, database, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "fake image", string(data))
	assert.Equal(t, "image/jpeg", mime)

	got, _ := GetBook(ctx, database, book.ID)
	assert.True(t, got.HasCover())

	assert.ErrorIs(t, SetBookCover(ctx, database, 999, []byte("x"), "image/jpeg"), model.ErrNotFound)
}
