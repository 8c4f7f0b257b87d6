package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle_tracker/internal/tracker"
)

// BusController serves live bus state to the student and driver apps.
type BusController struct {
	Tracker *tracker.Synchronizer
}

// GetCurrentBus returns the current bus reading plus a freshly computed
// ETA. The reading's origin tells clients whether they are looking at
// live store state or the built-in fallback.
func (bc *BusController) GetCurrentBus(c *gin.Context) {
	reading := bc.Tracker.GetCurrentBus(c.Request.Context())
	route := bc.Tracker.GetRoute(c.Request.Context(), reading.Bus.RouteID)
	if eta := tracker.EstimateETA(route.Route, reading.Bus.Location); eta != "" {
		reading.Bus.ETA = eta
	}
	c.JSON(http.StatusOK, gin.H{"bus": reading.Bus, "origin": reading.Origin})
}

// GetBus returns one bus by id, degrading to the fallback bus for
// unknown ids rather than erroring.
func (bc *BusController) GetBus(c *gin.Context) {
	reading := bc.Tracker.GetBusByID(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"bus": reading.Bus, "origin": reading.Origin})
}

// ListBuses returns every bus in the store.
func (bc *BusController) ListBuses(c *gin.Context) {
	buses, err := bc.Tracker.ListBuses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error listing buses: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buses})
}
