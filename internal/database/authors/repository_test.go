package authors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrudenko/bookcatalog/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_authors_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.AuthorBookRef{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return repo, cleanup
}

func seedAuthor(t *testing.T, repo *Repository, id, name string) {
	require.NoError(t, repo.Insert(&entities.Author{ID: id, Name: name}))
}

func TestRepository_AddBookRefs_SetSemantics(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedAuthor(t, repo, "a1", "One")
	seedAuthor(t, repo, "a2", "Two")

	require.NoError(t, repo.AddBookRefs("b1", []string{"a1", "a2"}))
	// Adding the same pairs again must not duplicate them.
	require.NoError(t, repo.AddBookRefs("b1", []string{"a1", "a2"}))

	books, err := repo.BookIDsFor("a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, books)

	count, err := repo.CountBookRefs("a2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRepository_RemoveBookRefs(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedAuthor(t, repo, "a1", "One")
	require.NoError(t, repo.AddBookRefs("b1", []string{"a1"}))
	require.NoError(t, repo.AddBookRefs("b2", []string{"a1"}))

	require.NoError(t, repo.RemoveBookRefs("b1", []string{"a1"}))

	books, err := repo.BookIDsFor("a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, books)
}

func TestRepository_EmptyRefSlicesAreNoOps(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddBookRefs("b1", nil))
	require.NoError(t, repo.RemoveBookRefs("b1", nil))
}

func TestRepository_FindSummaries(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedAuthor(t, repo, "a1", "One")
	seedAuthor(t, repo, "a2", "Two")
	seedAuthor(t, repo, "a3", "Three")

	summaries, err := repo.FindSummaries([]string{"a1", "a3"})
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestRepository_FindIDsByName_CaseInsensitive(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedAuthor(t, repo, "a1", "Frank Herbert")
	seedAuthor(t, repo, "a2", "William Gibson")

	ids, err := repo.FindIDsByName("hErBeRt")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, ids)
}

func TestRepository_BookIDsForAuthors_Distinct(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedAuthor(t, repo, "a1", "One")
	seedAuthor(t, repo, "a2", "Two")
	require.NoError(t, repo.AddBookRefs("b1", []string{"a1", "a2"}))
	require.NoError(t, repo.AddBookRefs("b2", []string{"a1"}))

	ids, err := repo.BookIDsForAuthors([]string{"a1", "a2"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b1", "b2"}, ids)

	none, err := repo.BookIDsForAuthors(nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
