package entities

import "time"

type Author struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"index;size:256" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Author) TableName() string {
	return "authors"
}

// AuthorBookRef is one element of an author's derived books set. The
// composite primary key makes insertion set-semantic: adding the same
// (author, book) pair twice cannot produce a duplicate row.
//
// These rows are maintained exclusively by the reference synchronizer;
// callers never write them directly.
type AuthorBookRef struct {
	AuthorID string `gorm:"primaryKey;size:36" json:"author_id"`
	BookID   string `gorm:"primaryKey;size:36;index" json:"book_id"`
}

func (AuthorBookRef) TableName() string {
	return "author_books"
}

// ReadAuthor is the externally visible representation of an author,
// including the derived books set.
type ReadAuthor struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Books []string `json:"books"`
}
