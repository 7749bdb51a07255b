package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrudenko/bookcatalog/internal/services"
)

type BooksController struct {
	books *services.BookService
}

func NewBooksController(books *services.BookService) *BooksController {
	return &BooksController{books: books}
}

type bookRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"gte=0"`
	NumberOfPages int      `json:"numberOfPages" binding:"gte=0"`
	Authors       []string `json:"authors"`
}

type bookPatchRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price" binding:"omitempty,gte=0"`
	NumberOfPages *int      `json:"numberOfPages" binding:"omitempty,gte=0"`
	Authors       *[]string `json:"authors"`
}

func (controller *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	book, err := controller.books.Create(c.Request.Context(), services.CreateBookInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		NumberOfPages: req.NumberOfPages,
		Authors:       req.Authors,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (controller *BooksController) ListBooks(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := services.BookFilter{
		Title:      c.Query("title"),
		AuthorName: c.Query("authorName"),
	}

	books, err := controller.books.Find(c.Request.Context(), filter, page, pageSize, c.Query("sort"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) CountBooks(c *gin.Context) {
	filter := services.BookFilter{
		Title:      c.Query("title"),
		AuthorName: c.Query("authorName"),
	}
	count, err := controller.books.Count(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (controller *BooksController) GetBookByID(c *gin.Context) {
	book, err := controller.books.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) ReplaceBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	book, err := controller.books.Replace(c.Request.Context(), c.Param("id"), services.CreateBookInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		NumberOfPages: req.NumberOfPages,
		Authors:       req.Authors,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) UpdateBook(c *gin.Context) {
	var req bookPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	book, err := controller.books.Update(c.Request.Context(), c.Param("id"), services.UpdateBookInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		NumberOfPages: req.NumberOfPages,
		Authors:       req.Authors,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	if err := controller.books.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
