package services

import (
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	authorsdb "github.com/mrudenko/bookcatalog/internal/database/authors"
	"github.com/mrudenko/bookcatalog/internal/entities"
)

const fieldAuthors = "authors"

// AuthorValidator checks a requested author id list for uniqueness and
// existence before any book write happens.
type AuthorValidator struct {
	authors *authorsdb.Repository
}

func NewAuthorValidator(authors *authorsdb.Repository) *AuthorValidator {
	return &AuthorValidator{authors: authors}
}

// Validate returns the resolved (id, name) summaries in request order.
// An empty input returns an empty result without touching storage.
// Duplicated or unknown ids fail with a validation error keyed on the
// authors field; on success callers can reuse the summaries to build the
// response without a second lookup.
func (v *AuthorValidator) Validate(tx *gorm.DB, authorIDs []string) ([]entities.AuthorSummary, error) {
	if len(authorIDs) == 0 {
		return []entities.AuthorSummary{}, nil
	}

	unique := lo.Uniq(authorIDs)
	if len(unique) != len(authorIDs) {
		duplicated := lo.FindDuplicates(authorIDs)
		return nil, NewValidationError(map[string]string{
			fieldAuthors: "duplicate author ids: " + strings.Join(duplicated, ", "),
		})
	}

	summaries, err := v.authors.WithTx(tx).FindSummaries(unique)
	if err != nil {
		return nil, AdaptStorageError(resourceAuthor, "", err)
	}
	if len(summaries) != len(unique) {
		found := lo.Map(summaries, func(s entities.AuthorSummary, _ int) string { return s.ID })
		missing := lo.Without(unique, found...)
		return nil, NewValidationError(map[string]string{
			fieldAuthors: "unknown author ids: " + strings.Join(missing, ", "),
		})
	}

	byID := lo.KeyBy(summaries, func(s entities.AuthorSummary) string { return s.ID })
	ordered := make([]entities.AuthorSummary, 0, len(authorIDs))
	for _, id := range authorIDs {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}
