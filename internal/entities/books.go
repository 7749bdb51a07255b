package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Book is the authoritative side of the book-author relationship: the
// ordered authors column is user-supplied and stored on the book row.
type Book struct {
	ID            string                      `gorm:"primaryKey;size:36" json:"id"`
	Title         string                      `gorm:"index;size:512" json:"title"`
	Description   string                      `gorm:"type:text" json:"description,omitempty"`
	Price         float64                     `json:"price"`
	NumberOfPages int                         `json:"numberOfPages"`
	AuthorIDs     datatypes.JSONSlice[string] `gorm:"column:authors" json:"authors"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// AuthorSummary is the resolved (id, name) pair embedded in read models.
type AuthorSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReadBook is the externally visible representation of a book with its
// author references resolved into summaries.
type ReadBook struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Price         float64         `json:"price"`
	NumberOfPages int             `json:"numberOfPages"`
	Authors       []AuthorSummary `json:"authors"`
}
