package model

import "time"

// Acquisition records a purchase of books from a vendor.
type Acquisition struct {
	ID             int64     `json:"id"`
	Vendor         string    `json:"vendor"`
	BudgetCents    int64     `json:"budget_cents"`
	BooksPurchased []int64   `json:"books_purchased"`
	CreatedAt      time.Time `json:"created_at"`
}
