package api

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/knjiznica/internal/auth"
	"github.com/erazemk/knjiznica/internal/db"
	"github.com/erazemk/knjiznica/internal/lending"
	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

const testJWTSecret = "test-secret"

type testServer struct {
	*httptest.Server
	db    *sql.DB
	token string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(NewRouter(database, testJWTSecret))
	t.Cleanup(server.Close)

	_, err := store.RegisterUserWithRole(context.Background(), database,
		"admin", "admin@example.com", "password1", model.RoleAdmin)
	require.NoError(t, err)

	ts := &testServer{Server: server, db: database}
	ts.token = ts.login(t, "admin@example.com", "password1")
	return ts
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := ts.do(t, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body loginResponse
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestLoginEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "password1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "admin@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, "POST", "/api/auth/register", "", registerRequest{
		Username: "ana", Email: "ana@example.com", Password: "password1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user map[string]any
	decodeBody(t, resp, &user)
	assert.Equal(t, "ana", user["username"])
	assert.Equal(t, model.RolePatron, user["role"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "PasswordHash")

	resp = ts.do(t, "POST", "/api/auth/register", "", registerRequest{
		Username: "ana2", Email: "ana@example.com", Password: "password1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, "POST", "/api/auth/register", "", registerRequest{
		Username: "bor", Email: "bor@example.com", Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, "GET", "/api/report", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, "POST", "/api/auth/logout", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, "GET", "/api/report", ts.token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBooksAPIFlow(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, "POST", "/api/books", ts.token, createBookRequest{
		Title: "The Hobbit", Author: "J.R.R. Tolkien", Category: "Fantasy", Metadata: "dc:title=The Hobbit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var book model.Book
	decodeBody(t, resp, &book)
	assert.Equal(t, model.DefaultMetadataFormat, book.MetadataFormat)
	assert.True(t, book.Available)

	resp = ts.do(t, "POST", "/api/books", ts.token, createBookRequest{Title: "Missing fields"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Reading the catalog needs no token.
	resp = ts.do(t, "GET", "/api/books?search=TOLKIEN", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var books []model.Book
	decodeBody(t, resp, &books)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)

	resp = ts.do(t, "GET", "/api/books?search=austen", "", nil)
	var none []model.Book
	decodeBody(t, resp, &none)
	assert.NotNil(t, none, "empty result is [] not null")
	assert.Empty(t, none)

	resp = ts.do(t, "GET", "/api/books/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBorrowsAPIFlow(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	book, err := store.CreateBook(ctx, ts.db, store.NewBook{
		Title: "Dune", Author: "Frank Herbert", Category: "SF",
		MetadataFormat: model.DefaultMetadataFormat, Metadata: "-",
	})
	require.NoError(t, err)

	resp := ts.do(t, "POST", "/api/patrons", ts.token, createPatronRequest{Name: "Ana", Email: "ana@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var patron model.Patron
	decodeBody(t, resp, &patron)

	resp = ts.do(t, "POST", "/api/borrows", ts.token, checkoutRequest{BookID: book.ID, PatronID: patron.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var borrow borrowResponse
	decodeBody(t, resp, &borrow)
	assert.Equal(t, model.BorrowStatusBorrowed, borrow.Status)
	assert.Equal(t, lending.FormatDate(lending.DueDate(time.Now())), borrow.DueDate)

	resp = ts.do(t, "POST", "/api/borrows", ts.token, checkoutRequest{BookID: book.ID, PatronID: patron.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "second checkout of the same book")

	resp = ts.do(t, "POST", "/api/borrows", ts.token, checkoutRequest{BookID: book.ID, PatronID: 999})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, "GET", "/api/borrows?status=borrowed", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var active []borrowResponse
	decodeBody(t, resp, &active)
	require.Len(t, active, 1)
	assert.Equal(t, "Dune", active[0].BookTitle)

	resp = ts.do(t, "POST", "/api/borrows/"+itoa(borrow.ID)+"/renew", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, "POST", "/api/borrows/"+itoa(borrow.ID)+"/return", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var returned borrowResponse
	decodeBody(t, resp, &returned)
	assert.Equal(t, model.BorrowStatusReturned, returned.Status)
	assert.NotEmpty(t, returned.ReturnDate)
	assert.Zero(t, returned.FineCents)

	resp = ts.do(t, "POST", "/api/borrows/"+itoa(borrow.ID)+"/return", ts.token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "second return")

	resp = ts.do(t, "POST", "/api/borrows/999/return", ts.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, "GET", "/api/report", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report model.Report
	decodeBody(t, resp, &report)
	assert.Equal(t, 1, report.TotalBooks)
	assert.Equal(t, 1, report.TotalPatrons)
	assert.Equal(t, 1, report.TotalBorrows)
	assert.Zero(t, report.OverdueBorrows)
}

func TestUnauthenticatedAccess(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/api/patrons", "/api/borrows", "/api/report"} {
		resp := ts.do(t, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := ts.do(t, "GET", "/api/report", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleBasedAccess(t *testing.T) {
	ts := setupTestServer(t)

	_, err := store.RegisterUser(context.Background(), ts.db, "ana", "ana@example.com", "password1")
	require.NoError(t, err)
	patronToken := ts.login(t, "ana@example.com", "password1")

	resp := ts.do(t, "POST", "/api/books", patronToken, createBookRequest{Title: "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, "GET", "/api/report", patronToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, model.ErrUnauthorized.Error(), body["error"])

	// Patrons may still check books out.
	resp = ts.do(t, "POST", "/api/borrows", patronToken, checkoutRequest{BookID: 1, PatronID: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A valid signature with an unknown role is not an admin.
	forged, err := auth.GenerateToken(testJWTSecret, 99, "eve", "librarian")
	require.NoError(t, err)
	resp = ts.do(t, "GET", "/api/report", forged, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
