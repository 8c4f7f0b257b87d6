package routes

import (
	"github.com/gin-gonic/gin"

	"shuttle_tracker/internal/controllers"
)

// WebSocketRoutes registers the realtime snapshot stream.
func WebSocketRoutes(r *gin.Engine, deps Deps) {
	wc := &controllers.WebSocketController{Hub: deps.Hub}
	r.GET("/ws", wc.HandleSnapshots)
}
