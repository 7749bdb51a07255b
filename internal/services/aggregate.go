package services

import (
	"github.com/samber/lo"
	"gorm.io/gorm"

	authorsdb "github.com/mrudenko/bookcatalog/internal/database/authors"
	"github.com/mrudenko/bookcatalog/internal/entities"
)

// BookAggregateBuilder assembles the read representation of a book with
// its author references resolved into (id, name) summaries. Resolution is
// an explicit step here, not a lazy populate-on-access.
type BookAggregateBuilder struct {
	authors *authorsdb.Repository
}

func NewBookAggregateBuilder(authors *authorsdb.Repository) *BookAggregateBuilder {
	return &BookAggregateBuilder{authors: authors}
}

// Build produces the read model for one book. When summaries are already
// known (the validator just resolved them) they are used directly;
// otherwise the stored references are resolved with one bulk lookup.
// Author order always follows the book's stored list.
func (b *BookAggregateBuilder) Build(db *gorm.DB, book *entities.Book, summaries []entities.AuthorSummary) (*entities.ReadBook, error) {
	if summaries == nil {
		var err error
		summaries, err = b.resolve(db, book.AuthorIDs)
		if err != nil {
			return nil, err
		}
	}
	return &entities.ReadBook{
		ID:            book.ID,
		Title:         book.Title,
		Description:   book.Description,
		Price:         book.Price,
		NumberOfPages: book.NumberOfPages,
		Authors:       summaries,
	}, nil
}

// BuildAll resolves the author summaries of a whole result page with a
// single lookup across all referenced authors.
func (b *BookAggregateBuilder) BuildAll(db *gorm.DB, books []entities.Book) ([]entities.ReadBook, error) {
	allIDs := lo.Uniq(lo.FlatMap(books, func(book entities.Book, _ int) []string {
		return book.AuthorIDs
	}))

	byID := map[string]entities.AuthorSummary{}
	if len(allIDs) > 0 {
		summaries, err := b.authors.WithTx(db).FindSummaries(allIDs)
		if err != nil {
			return nil, AdaptStorageError(resourceAuthor, "", err)
		}
		byID = lo.KeyBy(summaries, func(s entities.AuthorSummary) string { return s.ID })
	}

	reads := make([]entities.ReadBook, 0, len(books))
	for i := range books {
		book := &books[i]
		authors := make([]entities.AuthorSummary, 0, len(book.AuthorIDs))
		for _, id := range book.AuthorIDs {
			if summary, ok := byID[id]; ok {
				authors = append(authors, summary)
			}
		}
		reads = append(reads, entities.ReadBook{
			ID:            book.ID,
			Title:         book.Title,
			Description:   book.Description,
			Price:         book.Price,
			NumberOfPages: book.NumberOfPages,
			Authors:       authors,
		})
	}
	return reads, nil
}

func (b *BookAggregateBuilder) resolve(db *gorm.DB, authorIDs []string) ([]entities.AuthorSummary, error) {
	if len(authorIDs) == 0 {
		return []entities.AuthorSummary{}, nil
	}
	summaries, err := b.authors.WithTx(db).FindSummaries(authorIDs)
	if err != nil {
		return nil, AdaptStorageError(resourceAuthor, "", err)
	}
	byID := lo.KeyBy(summaries, func(s entities.AuthorSummary) string { return s.ID })
	ordered := make([]entities.AuthorSummary, 0, len(authorIDs))
	for _, id := range authorIDs {
		if summary, ok := byID[id]; ok {
			ordered = append(ordered, summary)
		}
	}
	return ordered, nil
}
