// Package books provides database operations for the book collection.
package books

import (
	"gorm.io/gorm"

	"github.com/mrudenko/bookcatalog/internal/entities"
)

// Filter narrows List and Count results. IDs is only applied when
// FilterByIDs is set, so an empty resolved id set can be distinguished
// from "no id filter".
type Filter struct {
	Title       string
	IDs         []string
	FilterByIDs bool
}

// Repository handles book row storage. Methods run against the handle the
// repository was built with; WithTx rebinds them to a transaction.
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

func (r *Repository) Insert(book *entities.Book) error {
	return r.db.Create(book).Error
}

func (r *Repository) GetByID(id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Save writes the full row, inserting when the id is not present yet.
func (r *Repository) Save(book *entities.Book) error {
	return r.db.Save(book).Error
}

func (r *Repository) Delete(id string) error {
	return r.db.Delete(&entities.Book{}, "id = ?", id).Error
}

func (r *Repository) List(f Filter, offset, limit int, order string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.filtered(f).Order(order).Offset(offset).Limit(limit).Find(&books).Error
	return books, err
}

func (r *Repository) Count(f Filter) (int64, error) {
	var count int64
	err := r.filtered(f).Model(&entities.Book{}).Count(&count).Error
	return count, err
}

func (r *Repository) filtered(f Filter) *gorm.DB {
	query := r.db
	if f.Title != "" {
		query = query.Where("title = ?", f.Title)
	}
	if f.FilterByIDs {
		query = query.Where("id IN ?", f.IDs)
	}
	return query
}
