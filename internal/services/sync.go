package services

import (
	"github.com/samber/lo"
	"gorm.io/gorm"

	authorsdb "github.com/mrudenko/bookcatalog/internal/database/authors"
)

// ReferenceSynchronizer keeps author back-references aligned with a book's
// author list. It must always run inside the unit of work that mutates the
// book row, so both sides commit or roll back together.
type ReferenceSynchronizer struct {
	authors *authorsdb.Repository
}

func NewReferenceSynchronizer(authors *authorsdb.Repository) *ReferenceSynchronizer {
	return &ReferenceSynchronizer{authors: authors}
}

// Sync computes the minimal delta between the old and new author id sets
// and applies it as two bulk writes: one removing bookID from authors that
// dropped out, one adding it to authors that joined. Authors present in
// both sets are untouched. Re-applying an unchanged delta is a no-op
// because the add path de-duplicates on write.
func (s *ReferenceSynchronizer) Sync(tx *gorm.DB, bookID string, oldAuthorIDs, newAuthorIDs []string) error {
	toRemove := lo.Without(oldAuthorIDs, newAuthorIDs...)
	toAdd := lo.Without(newAuthorIDs, oldAuthorIDs...)

	repo := s.authors.WithTx(tx)
	if err := repo.RemoveBookRefs(bookID, toRemove); err != nil {
		return AdaptStorageError(resourceAuthor, "", err)
	}
	if err := repo.AddBookRefs(bookID, toAdd); err != nil {
		return AdaptStorageError(resourceAuthor, "", err)
	}
	return nil
}
