// Package authors provides database operations for the author collection,
// including the derived book back-reference set.
//
// Back-references live in the author_books table and are only written by
// AddBookRefs and RemoveBookRefs; the composite primary key plus the
// ON CONFLICT DO NOTHING insert makes AddBookRefs idempotent, so applying
// the same delta twice never duplicates a set member.
package authors

import (
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrudenko/bookcatalog/internal/entities"
)

// Repository handles author row storage and the author_books set.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Insert(author *entities.Author) error {
	return r.db.Create(author).Error
}

func (r *Repository) GetByID(id string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *Repository) Save(author *entities.Author) error {
	return r.db.Save(author).Error
}

func (r *Repository) Delete(id string) error {
	return r.db.Delete(&entities.Author{}, "id = ?", id).Error
}

// List returns authors whose name contains nameQuery (case-insensitive),
// or all authors when nameQuery is empty.
func (r *Repository) List(nameQuery string, offset, limit int, order string) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.filtered(nameQuery).Order(order).Offset(offset).Limit(limit).Find(&authors).Error
	return authors, err
}

func (r *Repository) Count(nameQuery string) (int64, error) {
	var count int64
	err := r.filtered(nameQuery).Model(&entities.Author{}).Count(&count).Error
	return count, err
}

func (r *Repository) filtered(nameQuery string) *gorm.DB {
	query := r.db
	if nameQuery != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+nameQuery+"%")
	}
	return query
}

// FindSummaries bulk-fetches (id, name) pairs for the given ids in one query.
func (r *Repository) FindSummaries(ids []string) ([]entities.AuthorSummary, error) {
	var summaries []entities.AuthorSummary
	err := r.db.Model(&entities.Author{}).
		Select("id", "name").
		Where("id IN ?", ids).
		Scan(&summaries).Error
	return summaries, err
}

// FindIDsByName resolves a case-insensitive name substring to author ids.
func (r *Repository) FindIDsByName(nameQuery string) ([]string, error) {
	var ids []string
	err := r.db.Model(&entities.Author{}).
		Where("LOWER(name) LIKE LOWER(?)", "%"+nameQuery+"%").
		Pluck("id", &ids).Error
	return ids, err
}

// AddBookRefs inserts bookID into the books set of every listed author as
// one bulk write. Pairs that already exist are left untouched.
func (r *Repository) AddBookRefs(bookID string, authorIDs []string) error {
	if len(authorIDs) == 0 {
		return nil
	}
	refs := lo.Map(authorIDs, func(authorID string, _ int) entities.AuthorBookRef {
		return entities.AuthorBookRef{AuthorID: authorID, BookID: bookID}
	})
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&refs).Error
}

// RemoveBookRefs removes bookID from the books set of every listed author
// as one bulk delete.
func (r *Repository) RemoveBookRefs(bookID string, authorIDs []string) error {
	if len(authorIDs) == 0 {
		return nil
	}
	return r.db.
		Where("book_id = ? AND author_id IN ?", bookID, authorIDs).
		Delete(&entities.AuthorBookRef{}).Error
}

// BookIDsFor returns the books set of a single author.
func (r *Repository) BookIDsFor(authorID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&entities.AuthorBookRef{}).
		Where("author_id = ?", authorID).
		Order("book_id ASC").
		Pluck("book_id", &ids).Error
	return ids, err
}

// BookIDsForAuthors returns the distinct book ids referenced by any of the
// given authors. Used for the two-step author-name book filter.
func (r *Repository) BookIDsForAuthors(authorIDs []string) ([]string, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.Model(&entities.AuthorBookRef{}).
		Distinct("book_id").
		Where("author_id IN ?", authorIDs).
		Pluck("book_id", &ids).Error
	return ids, err
}

// RefsForAuthors bulk-loads the back-reference rows of the given authors.
func (r *Repository) RefsForAuthors(authorIDs []string) ([]entities.AuthorBookRef, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var refs []entities.AuthorBookRef
	err := r.db.
		Where("author_id IN ?", authorIDs).
		Order("author_id ASC, book_id ASC").
		Find(&refs).Error
	return refs, err
}

// AllRefs loads every back-reference row. Used by the integrity audit.
func (r *Repository) AllRefs() ([]entities.AuthorBookRef, error) {
	var refs []entities.AuthorBookRef
	err := r.db.Order("author_id ASC, book_id ASC").Find(&refs).Error
	return refs, err
}

// AllIDs loads every author id. Used by the integrity audit.
func (r *Repository) AllIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&entities.Author{}).Pluck("id", &ids).Error
	return ids, err
}

// CountBookRefs reports how many books still reference the author.
func (r *Repository) CountBookRefs(authorID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.AuthorBookRef{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}
