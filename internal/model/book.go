package model

import "time"

// Book is a catalog entry. Available is false exactly while a borrow with
// status BorrowStatusBorrowed references it.
type Book struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	Category          string    `json:"category"`
	Available         bool      `json:"available"`
	MetadataFormat    string    `json:"metadata_format"`
	Metadata          string    `json:"metadata"`
	DigitalContentURL string    `json:"digital_content_url,omitempty"`
	CoverMime         string    `json:"cover_mime,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// DefaultMetadataFormat prefills new catalog entries.
const DefaultMetadataFormat = "Dublin Core"

// HasCover reports whether a cover image is stored for the book.
func (b *Book) HasCover() bool {
	return b.CoverMime != ""
}
