package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrudenko/bookcatalog/internal/config"
	"github.com/mrudenko/bookcatalog/internal/database"
	authorsdb "github.com/mrudenko/bookcatalog/internal/database/authors"
	"github.com/mrudenko/bookcatalog/internal/entities"
)

type CreateAuthorInput struct {
	Name string
}

type UpdateAuthorInput struct {
	Name *string
}

var authorSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

// AuthorService implements the author entity operations. The books set in
// the read model is the derived back-reference projection; it is never
// writable through this service.
type AuthorService struct {
	db      *database.Database
	authors *authorsdb.Repository
	log     *zap.SugaredLogger
	paging  config.Pagination
}

func NewAuthorService(
	db *database.Database,
	authors *authorsdb.Repository,
	log *zap.SugaredLogger,
	paging config.Pagination,
) *AuthorService {
	return &AuthorService{db: db, authors: authors, log: log, paging: paging}
}

func (s *AuthorService) Create(ctx context.Context, in CreateAuthorInput) (*entities.ReadAuthor, error) {
	author := &entities.Author{
		ID:   uuid.NewString(),
		Name: in.Name,
	}
	if err := s.authors.WithTx(s.db.DB.WithContext(ctx)).Insert(author); err != nil {
		return nil, AdaptStorageError(resourceAuthor, author.ID, err)
	}
	s.log.Infow("author created", "id", author.ID, "name", author.Name)
	return &entities.ReadAuthor{ID: author.ID, Name: author.Name, Books: []string{}}, nil
}

func (s *AuthorService) FindByID(ctx context.Context, id string) (*entities.ReadAuthor, error) {
	repo := s.authors.WithTx(s.db.DB.WithContext(ctx))
	author, err := repo.GetByID(id)
	if err != nil {
		return nil, AdaptStorageError(resourceAuthor, id, err)
	}
	books, err := repo.BookIDsFor(id)
	if err != nil {
		return nil, AdaptStorageError(resourceAuthor, id, err)
	}
	if books == nil {
		books = []string{}
	}
	return &entities.ReadAuthor{ID: author.ID, Name: author.Name, Books: books}, nil
}

// Find returns a page of authors whose name contains nameQuery, with their
// books sets resolved in one bulk lookup.
func (s *AuthorService) Find(ctx context.Context, nameQuery string, page, pageSize int, sort string) ([]entities.ReadAuthor, error) {
	order, err := sortOrder(sort, authorSortColumns)
	if err != nil {
		return nil, err
	}
	offset, limit := s.pageBounds(page, pageSize)

	repo := s.authors.WithTx(s.db.DB.WithContext(ctx))
	authors, err := repo.List(nameQuery, offset, limit, order)
	if err != nil {
		return nil, AdaptStorageError(resourceAuthor, "", err)
	}

	ids := make([]string, 0, len(authors))
	for _, author := range authors {
		ids = append(ids, author.ID)
	}
	refs, err := repo.RefsForAuthors(ids)
	if err != nil {
		return nil, AdaptStorageError(resourceAuthor, "", err)
	}
	booksByAuthor := make(map[string][]string, len(authors))
	for _, ref := range refs {
		booksByAuthor[ref.AuthorID] = append(booksByAuthor[ref.AuthorID], ref.BookID)
	}

	reads := make([]entities.ReadAuthor, 0, len(authors))
	for _, author := range authors {
		books := booksByAuthor[author.ID]
		if books == nil {
			books = []string{}
		}
		reads = append(reads, entities.ReadAuthor{ID: author.ID, Name: author.Name, Books: books})
	}
	return reads, nil
}

func (s *AuthorService) Count(ctx context.Context, nameQuery string) (int64, error) {
	count, err := s.authors.WithTx(s.db.DB.WithContext(ctx)).Count(nameQuery)
	if err != nil {
		return 0, AdaptStorageError(resourceAuthor, "", err)
	}
	return count, nil
}

func (s *AuthorService) Update(ctx context.Context, id string, in UpdateAuthorInput) (*entities.ReadAuthor, error) {
	var read *entities.ReadAuthor
	err := s.db.RunInTransaction(ctx, func(tx *gorm.DB) error {
		repo := s.authors.WithTx(tx)
		author, err := repo.GetByID(id)
		if err != nil {
			return AdaptStorageError(resourceAuthor, id, err)
		}
		if in.Name != nil {
			author.Name = *in.Name
		}
		if err := repo.Save(author); err != nil {
			return AdaptStorageError(resourceAuthor, id, err)
		}
		books, err := repo.BookIDsFor(id)
		if err != nil {
			return AdaptStorageError(resourceAuthor, id, err)
		}
		if books == nil {
			books = []string{}
		}
		read = &entities.ReadAuthor{ID: author.ID, Name: author.Name, Books: books}
		return nil
	})
	if err != nil {
		return nil, AdaptStorageError(resourceAuthor, id, err)
	}
	s.log.Infow("author updated", "id", id)
	return read, nil
}

// Delete removes an author. Authors still referenced by books are
// protected: deleting them would leave dangling forward references, so the
// request fails with a validation error on the books field.
func (s *AuthorService) Delete(ctx context.Context, id string) error {
	err := s.db.RunInTransaction(ctx, func(tx *gorm.DB) error {
		repo := s.authors.WithTx(tx)
		if _, err := repo.GetByID(id); err != nil {
			return AdaptStorageError(resourceAuthor, id, err)
		}
		refCount, err := repo.CountBookRefs(id)
		if err != nil {
			return AdaptStorageError(resourceAuthor, id, err)
		}
		if refCount > 0 {
			return NewValidationError(map[string]string{
				"books": fmt.Sprintf("author is still referenced by %d book(s)", refCount),
			})
		}
		if err := repo.Delete(id); err != nil {
			return AdaptStorageError(resourceAuthor, id, err)
		}
		return nil
	})
	if err != nil {
		return AdaptStorageError(resourceAuthor, id, err)
	}
	s.log.Infow("author deleted", "id", id)
	return nil
}

func (s *AuthorService) pageBounds(page, pageSize int) (offset, limit int) {
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
