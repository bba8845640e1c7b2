package model

import "errors"

// Domain errors. Callers match them with errors.Is.
var (
	ErrDuplicateIdentity  = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("book is not available")
	ErrUnauthorized       = errors.New("admin access required")
	ErrAlreadyReturned    = errors.New("borrow already returned")
	ErrInvalidTransition  = errors.New("invalid borrow status transition")
	ErrValidation         = errors.New("invalid input")
)
