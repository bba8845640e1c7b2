package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/erazemk/knjiznica/internal/model"
)

// describe turns a store error into a status code and a message fit for
// the page. Unexpected errors are logged and reported generically.
func describe(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, sentence(detail(err, model.ErrValidation, "invalid input"))
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, model.ErrDuplicateIdentity):
		return http.StatusConflict, sentence(model.ErrDuplicateIdentity.Error())
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, sentence(detail(err, model.ErrNotFound, "record") + " not found")
	case errors.Is(err, model.ErrUnavailable):
		return http.StatusConflict, sentence(detail(err, model.ErrUnavailable, "that book is already on loan"))
	case errors.Is(err, model.ErrAlreadyReturned):
		return http.StatusConflict, "That borrow has already been returned."
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict, sentence(detail(err, model.ErrInvalidTransition, "that action is not possible for this borrow"))
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden, AdminRequiredMessage
	default:
		slog.Error("request failed", "error", err)
		return http.StatusInternalServerError, "Something went wrong, please try again."
	}
}

// detail returns what follows the sentinel in a wrapped error message, or
// fallback when the sentinel was returned bare.
func detail(err, sentinel error, fallback string) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return fallback
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
