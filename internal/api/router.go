package api

import (
	routes "geocerca/internal/api/handlers"
	"geocerca/internal/service/whitelist"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, filter *whitelist.Filter) {
	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""))

	// Setup telematics proxy handlers
	routes.SetupWialonHandlers(r.Group("/wialon"))

	// Setup board handlers (reconciliation, viewport, export)
	routes.SetupBoardHandlers(r.Group("/board"), filter)
}
