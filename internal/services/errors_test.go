package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAdaptStorageError_RecordNotFound(t *testing.T) {
	err := AdaptStorageError("Book", "b-1", gorm.ErrRecordNotFound)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
	assert.Equal(t, "Book", svcErr.Resource)
	assert.Equal(t, "b-1", svcErr.ID)
	assert.Equal(t, "Book b-1 not found", svcErr.Error())
}

func TestAdaptStorageError_PassesThroughNormalized(t *testing.T) {
	original := NewValidationError(map[string]string{"authors": "bad"})

	adapted := AdaptStorageError("Book", "b-1", original)
	var svcErr *Error
	require.ErrorAs(t, adapted, &svcErr)
	assert.Same(t, original, svcErr)
}

func TestAdaptStorageError_WrapsUnknownCauses(t *testing.T) {
	cause := errors.New("disk on fire")

	err := AdaptStorageError("Book", "", cause)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindRepository, svcErr.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestAdaptStorageError_Nil(t *testing.T) {
	assert.NoError(t, AdaptStorageError("Book", "", nil))
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError(map[string]string{"authors": "duplicate ids"})
	assert.Contains(t, err.Error(), "authors: duplicate ids")
}
