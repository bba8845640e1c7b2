package web

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/knjiznica/internal/model"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12", 1200, true},
		{"12.5", 1250, true},
		{"12.05", 1205, true},
		{"0.50", 50, true},
		{".75", 75, true},
		{"", 0, false},
		{"12.", 0, false},
		{"12.345", 0, false},
		{"-1", 0, false},
		{"1e3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCents(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "0.05", formatCents(5))
	assert.Equal(t, "12.50", formatCents(1250))
	assert.Equal(t, "-1.10", formatCents(-110))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("%w: missing title", model.ErrValidation), http.StatusBadRequest, "Missing title."},
		{fmt.Errorf("%w: patron", model.ErrNotFound), http.StatusNotFound, "Patron not found."},
		{model.ErrNotFound, http.StatusNotFound, "Record not found."},
		{fmt.Errorf("%w: %q is already borrowed", model.ErrUnavailable, "Dune"), http.StatusConflict, `"Dune" is already borrowed.`},
		{model.ErrAlreadyReturned, http.StatusConflict, "That borrow has already been returned."},
		{model.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password."},
		{model.ErrUnauthorized, http.StatusForbidden, AdminRequiredMessage},
	}
	for _, tt := range tests {
		status, msg := describe(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}

	status, _ := describe(fmt.Errorf("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limits are per client")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"), "window has passed")
}
