package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrudenko/bookcatalog/internal/config"
	"github.com/mrudenko/bookcatalog/internal/database"
	authorsdb "github.com/mrudenko/bookcatalog/internal/database/authors"
	booksdb "github.com/mrudenko/bookcatalog/internal/database/books"
	"github.com/mrudenko/bookcatalog/internal/entities"
)

// CreateBookInput carries the full book payload for create and replace.
type CreateBookInput struct {
	Title         string
	Description   string
	Price         float64
	NumberOfPages int
	Authors       []string
}

// UpdateBookInput carries a partial payload; nil fields are left untouched.
type UpdateBookInput struct {
	Title         *string
	Description   *string
	Price         *float64
	NumberOfPages *int
	Authors       *[]string
}

// BookFilter narrows find and count results. AuthorName is a
// case-insensitive substring match on author names, resolved in two steps:
// matching author ids first, then the book-id set from their
// back-references. The query is never a single join.
type BookFilter struct {
	Title      string
	AuthorName string
}

var bookSortColumns = map[string]string{
	"title":         "title",
	"price":         "price",
	"numberOfPages": "number_of_pages",
	"created_at":    "created_at",
}

// BookService implements the book entity operations. Every mutator runs as
// one unit of work: validate, write the book row, synchronize the author
// back-references, commit. Any failure aborts the whole unit.
type BookService struct {
	db        *database.Database
	books     *booksdb.Repository
	authors   *authorsdb.Repository
	validator *AuthorValidator
	sync      *ReferenceSynchronizer
	builder   *BookAggregateBuilder
	log       *zap.SugaredLogger
	paging    config.Pagination
}

func NewBookService(
	db *database.Database,
	books *booksdb.Repository,
	authors *authorsdb.Repository,
	log *zap.SugaredLogger,
	paging config.Pagination,
) *BookService {
	return &BookService{
		db:        db,
		books:     books,
		authors:   authors,
		validator: NewAuthorValidator(authors),
		sync:      NewReferenceSynchronizer(authors),
		builder:   NewBookAggregateBuilder(authors),
		log:       log,
		paging:    paging,
	}
}

// Create inserts a new book and adds its id to every referenced author's
// books set, all in one transaction. Validation runs before any write, so
// a rejected payload mutates nothing.
func (s *BookService) Create(ctx context.Context, in CreateBookInput) (*entities.ReadBook, error) {
	book := &entities.Book{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Description:   in.Description,
		Price:         in.Price,
		NumberOfPages: in.NumberOfPages,
		AuthorIDs:     in.Authors,
	}

	var read *entities.ReadBook
	err := s.db.RunInTransaction(ctx, func(tx *gorm.DB) error {
		summaries, err := s.validator.Validate(tx, in.Authors)
		if err != nil {
			return err
		}
		if err := s.books.WithTx(tx).Insert(book); err != nil {
			return AdaptStorageError(resourceBook, book.ID, err)
		}
		if err := s.sync.Sync(tx, book.ID, nil, in.Authors); err != nil {
			return err
		}
		read, err = s.builder.Build(tx, book, summaries)
		return err
	})
	if err != nil {
		return nil, AdaptStorageError(resourceBook, book.ID, err)
	}

	s.log.Infow("book created", "id", book.ID, "authors", len(in.Authors))
	return read, nil
}

// FindByID returns the read model of one book with resolved authors.
func (s *BookService) FindByID(ctx context.Context, id string) (*entities.ReadBook, error) {
	db := s.db.DB.WithContext(ctx)
	book, err := s.books.WithTx(db).GetByID(id)
	if err != nil {
		return nil, AdaptStorageError(resourceBook, id, err)
	}
	return s.builder.Build(db, book, nil)
}

// Find returns a page of read models matching the filter.
func (s *BookService) Find(ctx context.Context, filter BookFilter, page, pageSize int, sort string) ([]entities.ReadBook, error) {
	order, err := sortOrder(sort, bookSortColumns)
	if err != nil {
		return nil, err
	}
	offset, limit := s.pageBounds(page, pageSize)

	db := s.db.DB.WithContext(ctx)
	storageFilter, empty, err := s.resolveFilter(db, filter)
	if err != nil {
		return nil, err
	}
	if empty {
		return []entities.ReadBook{}, nil
	}

	books, err := s.books.WithTx(db).List(storageFilter, offset, limit, order)
	if err != nil {
		return nil, AdaptStorageError(resourceBook, "", err)
	}
	return s.builder.BuildAll(db, books)
}

// Count returns the number of books matching the filter.
func (s *BookService) Count(ctx context.Context, filter BookFilter) (int64, error) {
	db := s.db.DB.WithContext(ctx)
	storageFilter, empty, err := s.resolveFilter(db, filter)
	if err != nil {
		return 0, err
	}
	if empty {
		return 0, nil
	}
	count, err := s.books.WithTx(db).Count(storageFilter)
	if err != nil {
		return 0, AdaptStorageError(resourceBook, "", err)
	}
	return count, nil
}

// Replace writes the full book row under the given id, inserting it when
// absent. The previous author list is snapshotted before the write so the
// synchronizer only touches authors that actually changed sides.
func (s *BookService) Replace(ctx context.Context, id string, in CreateBookInput) (*entities.ReadBook, error) {
	var read *entities.ReadBook
	err := s.db.RunInTransaction(ctx, func(tx *gorm.DB) error {
		books := s.books.WithTx(tx)

		var oldAuthorIDs []string
		existing, err := books.GetByID(id)
		switch {
		case err == nil:
			oldAuthorIDs = existing.AuthorIDs
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Upsert: absent id means a fresh row under the caller's id.
		default:
			return AdaptStorageError(resourceBook, id, err)
		}

		summaries, err := s.validator.Validate(tx, in.Authors)
		if err != nil {
			return err
		}

		book := &entities.Book{
			ID:            id,
			Title:         in.Title,
			Description:   in.Description,
			Price:         in.Price,
			NumberOfPages: in.NumberOfPages,
			AuthorIDs:     in.Authors,
		}
		if existing != nil {
			book.CreatedAt = existing.CreatedAt
		}
		if err := books.Save(book); err != nil {
			return AdaptStorageError(resourceBook, id, err)
		}
		if err := s.sync.Sync(tx, id, oldAuthorIDs, in.Authors); err != nil {
			return err
		}
		read, err = s.builder.Build(tx, book, summaries)
		return err
	})
	if err != nil {
		return nil, AdaptStorageError(resourceBook, id, err)
	}

	s.log.Infow("book replaced", "id", id)
	return read, nil
}

// Update patches the given fields. A missing book aborts the unit before
// any write or reference synchronization happens.
func (s *BookService) Update(ctx context.Context, id string, in UpdateBookInput) (*entities.ReadBook, error) {
	var read *entities.ReadBook
	err := s.db.RunInTransaction(ctx, func(tx *gorm.DB) error {
		books := s.books.WithTx(tx)

		book, err := books.GetByID(id)
		if err != nil {
			return AdaptStorageError(resourceBook, id, err)
		}
		oldAuthorIDs := []string(book.AuthorIDs)

		var summaries []entities.AuthorSummary
		if in.Authors != nil {
			summaries, err = s.validator.Validate(tx, *in.Authors)
			if err != nil {
				return err
			}
			book.AuthorIDs = *in.Authors
		}
		if in.Title != nil {
			book.Title = *in.Title
		}
		if in.Description != nil {
			book.Description = *in.Description
		}
		if in.Price != nil {
			book.Price = *in.Price
		}
		if in.NumberOfPages != nil {
			book.NumberOfPages = *in.NumberOfPages
		}

		if err := books.Save(book); err != nil {
			return AdaptStorageError(resourceBook, id, err)
		}
		if in.Authors != nil {
			if err := s.sync.Sync(tx, id, oldAuthorIDs, *in.Authors); err != nil {
				return err
			}
		}
		read, err = s.builder.Build(tx, book, summaries)
		return err
	})
	if err != nil {
		return nil, AdaptStorageError(resourceBook, id, err)
	}

	s.log.Infow("book updated", "id", id)
	return read, nil
}

// Delete removes the book row and its id from the books set of every
// author the deleted row listed, in one transaction.
func (s *BookService) Delete(ctx context.Context, id string) error {
	err := s.db.RunInTransaction(ctx, func(tx *gorm.DB) error {
		books := s.books.WithTx(tx)

		book, err := books.GetByID(id)
		if err != nil {
			return AdaptStorageError(resourceBook, id, err)
		}
		if err := books.Delete(id); err != nil {
			return AdaptStorageError(resourceBook, id, err)
		}
		return s.sync.Sync(tx, id, book.AuthorIDs, nil)
	})
	if err != nil {
		return AdaptStorageError(resourceBook, id, err)
	}

	s.log.Infow("book deleted", "id", id)
	return nil
}

// resolveFilter translates a service filter into a storage filter. The
// author-name filter resolves to a book-id set first; when no author
// matches, the result is known to be empty without querying books.
func (s *BookService) resolveFilter(db *gorm.DB, filter BookFilter) (booksdb.Filter, bool, error) {
	storageFilter := booksdb.Filter{Title: filter.Title}
	if filter.AuthorName == "" {
		return storageFilter, false, nil
	}

	authors := s.authors.WithTx(db)
	authorIDs, err := authors.FindIDsByName(filter.AuthorName)
	if err != nil {
		return storageFilter, false, AdaptStorageError(resourceAuthor, "", err)
	}
	bookIDs, err := authors.BookIDsForAuthors(authorIDs)
	if err != nil {
		return storageFilter, false, AdaptStorageError(resourceAuthor, "", err)
	}
	storageFilter.IDs = bookIDs
	storageFilter.FilterByIDs = true
	return storageFilter, len(bookIDs) == 0, nil
}

func (s *BookService) pageBounds(page, pageSize int) (offset, limit int) {
	if pageSize <= 0 {
		pageSize = s.paging.DefaultPageSize
	}
	if pageSize > s.paging.MaxPageSize {
		pageSize = s.paging.MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize, pageSize
}

// sortOrder maps an external sort parameter ("title", "-price") onto an
// allow-listed ORDER BY clause. Unknown fields are a validation error
// rather than raw SQL input.
func sortOrder(sort string, columns map[string]string) (string, error) {
	if sort == "" {
		return "created_at ASC", nil
	}
	direction := "ASC"
	field := sort
	if strings.HasPrefix(sort, "-") {
		direction = "DESC"
		field = sort[1:]
	}
	column, ok := columns[field]
	if !ok {
		return "", NewValidationError(map[string]string{"sort": "unknown sort field: " + field})
	}
	return column + " " + direction, nil
}
