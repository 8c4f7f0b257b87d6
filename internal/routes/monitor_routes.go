package routes

import (
	"github.com/gin-gonic/gin"

	"shuttle_tracker/internal/controllers"
)

// MonitorRoutes registers the read-side endpoints both apps poll when
// they are not holding a WebSocket open.
func MonitorRoutes(r *gin.Engine, deps Deps) {
	bc := &controllers.BusController{Tracker: deps.Tracker}
	rc := &controllers.RouteController{Tracker: deps.Tracker}
	ac := &controllers.AttendanceController{Attendance: deps.Attendance}
	sc := &controllers.StudentController{Store: deps.Store}

	r.GET("/bus", bc.GetCurrentBus)
	r.GET("/bus/:id", bc.GetBus)
	r.GET("/buses", bc.ListBuses)

	r.GET("/route/:id", rc.GetRoute)
	r.GET("/route/:id/path", rc.GetRoutePath)
	r.GET("/routes", rc.ListRoutes)

	r.GET("/students", sc.ListStudents)

	r.GET("/attendance/roster", ac.GetRoster)
	r.GET("/attendance/bus/:id", ac.GetRosterForBus)
}
