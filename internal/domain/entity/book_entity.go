package entity

import "time"

// Book is a catalog entry. IsAvailable must be false whenever NumberOfCopy is 0;
// only the catalog and loan services write these two fields.
type Book struct {
	ID            string
	Title         string
	Author        string
	ISBN          string
	PublishedDate time.Time
	NumberOfCopy  int
	IsAvailable   bool
	CoverURL      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Lendable reports whether at least one copy can be borrowed.
func (b *Book) Lendable() bool { return b.NumberOfCopy > 0 }
