package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Resource names used in not-found errors and adapter call sites.
const (
	resourceBook   = "Book"
	resourceAuthor = "Author"
)

// ErrorKind tags the failure classes the service layer is allowed to
// surface. Callers map them mechanically: validation is a client error,
// not-found a 404, repository a server error.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindRepository
)

// Error is the single error type leaving the service layer. The Kind tag
// selects which payload fields are meaningful: Fields for validation,
// Resource/ID for not-found, the wrapped cause for repository failures.
type Error struct {
	Kind     ErrorKind
	Resource string
	ID       string
	Fields   map[string]string
	cause    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		fields := make([]string, 0, len(e.Fields))
		for field, msg := range e.Fields {
			fields = append(fields, field+": "+msg)
		}
		sort.Strings(fields)
		return "validation failed: " + strings.Join(fields, "; ")
	case KindNotFound:
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	default:
		return fmt.Sprintf("repository error: %v", e.cause)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

func NewNotFoundError(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Resource: resource, ID: id}
}

// AdaptStorageError normalizes a storage-level failure into the service
// error taxonomy. This is the only place storage-engine error values are
// inspected; everything above it only sees *Error.
//
// Already-normalized errors pass through untouched so the original failure
// of an aborted transaction is preserved.
func AdaptStorageError(resource, id string, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(resource, id)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return NewValidationError(map[string]string{resource: sqliteErr.Error()})
	}
	if errors.Is(err, gorm.ErrInvalidData) || errors.Is(err, gorm.ErrInvalidValue) {
		return NewValidationError(map[string]string{resource: err.Error()})
	}
	return &Error{Kind: KindRepository, cause: err}
}
