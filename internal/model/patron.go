package model

import "time"

// Patron is a library member who can borrow books. Patrons are not login
// accounts.
type Patron struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
