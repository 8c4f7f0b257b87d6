package routes

import (
	"github.com/gin-gonic/gin"

	"shuttle_tracker/internal/controllers"
)

// StudentRoutes registers the student app's write endpoints.
func StudentRoutes(r *gin.Engine, deps Deps) {
	ac := &controllers.AttendanceController{Attendance: deps.Attendance}
	sc := &controllers.SOSController{Store: deps.Store, Hub: deps.Hub}

	student := r.Group("/student")
	{
		student.POST("/attendance", ac.Confirm)
		student.POST("/sos", sc.Raise)
	}
}
