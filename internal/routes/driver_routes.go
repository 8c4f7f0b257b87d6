package routes

import (
	"github.com/gin-gonic/gin"

	"shuttle_tracker/internal/controllers"
)

// DriverRoutes registers the driver app's endpoints: pushing GPS fixes
// and controlling the location simulator.
func DriverRoutes(r *gin.Engine, deps Deps) {
	dc := &controllers.DriverController{Tracker: deps.Tracker, SimCfg: deps.SimCfg}

	driver := r.Group("/driver")
	{
		driver.POST("/location", dc.PushLocation)
		driver.POST("/simulator/start", dc.StartSimulator)
		driver.POST("/simulator/stop", dc.StopSimulator)
	}
}
