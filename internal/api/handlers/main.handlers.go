package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupMainHandlers registers the main application endpoints
func SetupMainHandlers(router *gin.RouterGroup) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"ok": true,
			"endpoints": []string{
				"/wialon/units",
				"/wialon/resources",
				"/wialon/resources/:id/geofences",
				"/wialon/units/in-geofences/local",
				"/wialon/snapshot",
				"/board/rows",
				"/board/viewport",
				"/board/export",
			},
		})
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}
