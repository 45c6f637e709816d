package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReportsPlaceholder - раздел отчетов пока в разработке
func ReportsPlaceholder(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"message": "Раздел отчетов в разработке",
	})
}
