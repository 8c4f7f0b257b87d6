package routes

import (
	"net/http"

	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"shuttle_tracker/internal/attendance"
	"shuttle_tracker/internal/config"
	"shuttle_tracker/internal/controllers"
	"shuttle_tracker/internal/store"
	"shuttle_tracker/internal/tracker"
)

// Deps carries the service handles the route groups wire into their
// controllers. Everything is injected; no package holds a global store.
type Deps struct {
	Store      store.Gateway
	Tracker    *tracker.Synchronizer
	Attendance *attendance.Service
	Hub        *controllers.SnapshotHub
	SimCfg     config.SimulatorConfig
}

// SetupRouter builds the Gin engine with all route groups registered.
func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.SetLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	MonitorRoutes(r, deps)
	DriverRoutes(r, deps)
	StudentRoutes(r, deps)
	WebSocketRoutes(r, deps)

	return r
}
