package model

// Report holds the aggregate counts shown to administrators.
type Report struct {
	TotalBooks      int   `json:"total_books"`
	TotalPatrons    int   `json:"total_patrons"`
	TotalBorrows    int   `json:"total_borrows"`
	OverdueBorrows  int   `json:"overdue_borrows"`
	ActiveBorrows   int   `json:"active_borrows"`
	FinesTotalCents int64 `json:"fines_total_cents"`
}
