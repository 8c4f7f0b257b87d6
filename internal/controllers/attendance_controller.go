package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/attendance"
)

// AttendanceController records confirmations and serves rosters.
type AttendanceController struct {
	Attendance *attendance.Service
}

// Confirm records a student's pickup confirmation. bus_id and
// student_name are optional; a missing bus id binds to whichever bus is
// currently "the" bus at write time.
func (ac *AttendanceController) Confirm(c *gin.Context) {
	var input struct {
		StudentID      string `json:"student_id" binding:"required"`
		PickupLocation string `json:"pickup_location" binding:"required"`
		StudentName    string `json:"student_name"`
		BusID          string `json:"bus_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attendance payload: " + err.Error()})
		return
	}

	record, err := ac.Attendance.Confirm(c.Request.Context(), input.StudentID, input.PickupLocation, attendance.ConfirmOptions{
		StudentName: input.StudentName,
		BusID:       input.BusID,
	})
	if err != nil {
		logrus.WithError(err).WithField("student_id", input.StudentID).Error("Attendance confirmation failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not confirm attendance: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attendance": record})
}

// GetRoster returns the current roster grouped by pickup stop, in
// first-seen stop order.
func (ac *AttendanceController) GetRoster(c *gin.Context) {
	records, err := ac.Attendance.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading roster: " + err.Error()})
		return
	}
	roster := attendance.GroupByStop(records)

	groups := make([]gin.H, 0, len(roster.Order))
	for _, stop := range roster.Order {
		groups = append(groups, gin.H{"stop": stop, "records": roster.Groups[stop]})
	}
	c.JSON(http.StatusOK, gin.H{"total": roster.Count(), "groups": groups})
}

// GetRosterForBus returns the flat record list for one bus.
func (ac *AttendanceController) GetRosterForBus(c *gin.Context) {
	records, err := ac.Attendance.SnapshotForBus(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading roster: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
