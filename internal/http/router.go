package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrudenko/bookcatalog/internal/database"
	"github.com/mrudenko/bookcatalog/internal/services"
)

// RouterConfig carries all dependencies the router needs, keeping the
// constructor signature stable as surfaces are added.
type RouterConfig struct {
	Database *database.Database
	Books    *services.BookService
	Authors  *services.AuthorService
	Version  string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Books)
	authorsController := NewAuthorsController(cfg.Authors)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Books API endpoints
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/count", booksController.CountBooks)
	router.GET("/api/books/:id", booksController.GetBookByID)
	router.PUT("/api/books/:id", booksController.ReplaceBook)
	router.PATCH("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)

	// Authors API endpoints
	router.POST("/api/authors", authorsController.CreateAuthor)
	router.GET("/api/authors", authorsController.ListAuthors)
	router.GET("/api/authors/count", authorsController.CountAuthors)
	router.GET("/api/authors/:id", authorsController.GetAuthorByID)
	router.PATCH("/api/authors/:id", authorsController.UpdateAuthor)
	router.DELETE("/api/authors/:id", authorsController.DeleteAuthor)

	return router
}
