package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrudenko/bookcatalog/internal/database"
)

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

func (controller *HealthController) Status(c *gin.Context) {
	sqlDB, err := controller.db.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"version": controller.version,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": controller.version,
	})
}
