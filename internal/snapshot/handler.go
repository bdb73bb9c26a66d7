package snapshot

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/logger"
)

// RegisterRoutes mounts POST /admin/snapshots on rg behind mw.
func RegisterRoutes(rg gin.IRouter, e *Exporter, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), func(c *gin.Context) {
		res, err := e.Export(c.Request.Context())
		if err != nil {
			logger.Errorf("snapshot export failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to export snapshot"})
			return
		}
		c.JSON(http.StatusCreated, res)
	})
	rg.POST("/admin/snapshots", handlers...)
}
