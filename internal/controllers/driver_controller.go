package controllers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/config"
	"shuttle_tracker/internal/driversim"
	"shuttle_tracker/internal/models"
	"shuttle_tracker/internal/tracker"
)

// DriverController accepts location pushes from the driver app and
// manages the built-in location simulator.
type DriverController struct {
	Tracker *tracker.Synchronizer
	SimCfg  config.SimulatorConfig

	mu  sync.Mutex
	sim *driversim.Simulator
}

// PushLocation records one GPS fix for a bus. A write failure is a real
// failure here, unlike the read paths: the driver app needs to know the
// fix was lost.
func (dc *DriverController) PushLocation(c *gin.Context) {
	var input struct {
		BusID     string  `json:"bus_id" binding:"required"`
		Latitude  float64 `json:"latitude" binding:"required"`
		Longitude float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location payload: " + err.Error()})
		return
	}

	loc := models.Coordinate{Latitude: input.Latitude, Longitude: input.Longitude}
	if err := dc.Tracker.UpdateLocation(c.Request.Context(), input.BusID, loc); err != nil {
		logrus.WithError(err).WithField("bus_id", input.BusID).Error("Location push failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to update location: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved", "bus_id": input.BusID})
}

// StartSimulator launches the periodic location pusher for the
// configured bus. Idempotent: starting twice keeps the first run.
func (dc *DriverController) StartSimulator(c *gin.Context) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.sim != nil {
		c.JSON(http.StatusOK, gin.H{"status": "already running", "bus_id": dc.SimCfg.BusID})
		return
	}
	dc.sim = driversim.New(dc.Tracker, dc.SimCfg.BusID, dc.SimCfg.Interval)
	dc.sim.Start(context.Background())
	c.JSON(http.StatusOK, gin.H{"status": "started", "bus_id": dc.SimCfg.BusID})
}

// StopSimulator disposes the running simulator, halting further pushes.
func (dc *DriverController) StopSimulator(c *gin.Context) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.sim == nil {
		c.JSON(http.StatusOK, gin.H{"status": "not running"})
		return
	}
	dc.sim.Stop()
	dc.sim = nil
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}
