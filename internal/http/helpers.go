package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrudenko/bookcatalog/internal/services"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"` // field→message map for validation errors
}

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// validation → 422 with the field map, not-found → 404, everything else →
// 500 with the cause hidden from the client.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case services.KindValidation:
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "validation failed",
				Details: svcErr.Fields,
			})
			return
		case services.KindNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{Error: svcErr.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// parsePagination reads page/pageSize query parameters, defaulting to the
// service-side defaults when absent or malformed.
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "0"))
	return page, pageSize
}
