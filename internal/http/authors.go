package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrudenko/bookcatalog/internal/services"
)

type AuthorsController struct {
	authors *services.AuthorService
}

func NewAuthorsController(authors *services.AuthorService) *AuthorsController {
	return &AuthorsController{authors: authors}
}

type authorRequest struct {
	Name string `json:"name" binding:"required"`
}

type authorPatchRequest struct {
	Name *string `json:"name"`
}

func (controller *AuthorsController) CreateAuthor(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	author, err := controller.authors.Create(c.Request.Context(), services.CreateAuthorInput{Name: req.Name})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (controller *AuthorsController) ListAuthors(c *gin.Context) {
	page, pageSize := parsePagination(c)

	authors, err := controller.authors.Find(c.Request.Context(), c.Query("name"), page, pageSize, c.Query("sort"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authors": authors, "count": len(authors)})
}

func (controller *AuthorsController) CountAuthors(c *gin.Context) {
	count, err := controller.authors.Count(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (controller *AuthorsController) GetAuthorByID(c *gin.Context) {
	author, err := controller.authors.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (controller *AuthorsController) UpdateAuthor(c *gin.Context) {
	var req authorPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	author, err := controller.authors.Update(c.Request.Context(), c.Param("id"), services.UpdateAuthorInput{Name: req.Name})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (controller *AuthorsController) DeleteAuthor(c *gin.Context) {
	if err := controller.authors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
