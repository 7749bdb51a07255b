package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrudenko/bookcatalog/internal/config"
	"github.com/mrudenko/bookcatalog/internal/database"
	authorsdb "github.com/mrudenko/bookcatalog/internal/database/authors"
	booksdb "github.com/mrudenko/bookcatalog/internal/database/books"
	"github.com/mrudenko/bookcatalog/internal/entities"
	"github.com/mrudenko/bookcatalog/internal/services"
)

func setupTestRouter(t *testing.T) (*gin.Engine, func()) {
	gin.SetMode(gin.TestMode)
	dbPath := "./test_http_" + t.Name() + ".db"

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	log := zap.NewNop().Sugar()
	paging := config.Pagination{DefaultPageSize: 20, MaxPageSize: 100}
	bookRepo := booksdb.NewRepository(db.DB)
	authorRepo := authorsdb.NewRepository(db.DB)

	router := NewRouter(RouterConfig{
		Database: db,
		Books:    services.NewBookService(db, bookRepo, authorRepo, log, paging),
		Authors:  services.NewAuthorService(db, authorRepo, log, paging),
		Version:  "test",
	})

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return router, cleanup
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestAuthor(t *testing.T, router *gin.Engine, name string) string {
	w := doJSON(t, router, http.MethodPost, "/api/authors", gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var author entities.ReadAuthor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &author))
	return author.ID
}

func TestBooksAPI_CreateAndGet(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	authorID := createTestAuthor(t, router, "Frank Herbert")

	w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
		"title":         "Dune",
		"description":   "Desert planet",
		"price":         9.99,
		"numberOfPages": 412,
		"authors":       []string{authorID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created entities.ReadBook
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Len(t, created.Authors, 1)
	assert.Equal(t, "Frank Herbert", created.Authors[0].Name)

	w = doJSON(t, router, http.MethodGet, "/api/books/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched entities.ReadBook
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "Dune", fetched.Title)
	assert.Equal(t, 412, fetched.NumberOfPages)

	// The author's view carries the back-reference.
	w = doJSON(t, router, http.MethodGet, "/api/authors/"+authorID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var author entities.ReadAuthor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &author))
	assert.Equal(t, []string{created.ID}, author.Books)
}

func TestBooksAPI_CreateRejectsMissingTitle(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{"price": 1.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooksAPI_CreateRejectsUnknownAuthor(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
		"title":   "Ghostwritten",
		"authors": []string{"no-such-author"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)
	details, ok := resp.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "authors")
}

func TestBooksAPI_GetMissingReturns404(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doJSON(t, router, http.MethodGet, "/api/books/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksAPI_ReplaceUpserts(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	authorID := createTestAuthor(t, router, "William Gibson")

	w := doJSON(t, router, http.MethodPut, "/api/books/client-chosen-id", gin.H{
		"title":   "Neuromancer",
		"authors": []string{authorID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var book entities.ReadBook
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	assert.Equal(t, "client-chosen-id", book.ID)
}

func TestBooksAPI_PatchAndDelete(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	authorID := createTestAuthor(t, router, "Octavia Butler")
	w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
		"title":   "Kindred",
		"authors": []string{authorID},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var book entities.ReadBook
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))

	w = doJSON(t, router, http.MethodPatch, "/api/books/"+book.ID, gin.H{"price": 12.5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var patched entities.ReadBook
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patched))
	assert.Equal(t, 12.5, patched.Price)
	assert.Equal(t, "Kindred", patched.Title)

	w = doJSON(t, router, http.MethodDelete, "/api/books/"+book.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/books/"+book.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksAPI_ListFilterByAuthorName(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	herbert := createTestAuthor(t, router, "Frank Herbert")
	gibson := createTestAuthor(t, router, "William Gibson")

	for i, spec := range []struct {
		title  string
		author string
	}{
		{"Dune", herbert},
		{"Neuromancer", gibson},
	} {
		w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
			"title":   spec.title,
			"price":   float64(i),
			"authors": []string{spec.author},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/books?authorName=herbert", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Books []entities.ReadBook `json:"books"`
		Count int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Dune", resp.Books[0].Title)

	w = doJSON(t, router, http.MethodGet, "/api/books/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count": 2}`, w.Body.String())
}

func TestBooksAPI_ListRejectsUnknownSortField(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doJSON(t, router, http.MethodGet, "/api/books?sort=id;drop+table", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuthorsAPI_DeleteReferencedReturns422(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	authorID := createTestAuthor(t, router, "Busy")
	w := doJSON(t, router, http.MethodPost, "/api/books", gin.H{
		"title":   "In Print",
		"authors": []string{authorID},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/authors/%s", authorID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
