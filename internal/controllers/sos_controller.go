package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/store"
)

// SOSController records rider emergency alerts and pushes them to every
// connected monitor. Delivery of the alert to campus security is a
// deployment concern; the core only persists and broadcasts.
type SOSController struct {
	Store store.Gateway
	Hub   *SnapshotHub
}

// Raise appends one SOS alert.
func (sc *SOSController) Raise(c *gin.Context) {
	var input struct {
		StudentID string   `json:"student_id" binding:"required"`
		Message   string   `json:"message"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid SOS payload: " + err.Error()})
		return
	}

	fields := store.Fields{
		"studentId": input.StudentID,
		"message":   input.Message,
		"timestamp": store.ServerTimestamp,
		"createdAt": time.Now().Format(time.RFC3339),
	}
	if input.Latitude != nil && input.Longitude != nil {
		fields["location"] = map[string]any{
			"latitude":  *input.Latitude,
			"longitude": *input.Longitude,
		}
	}

	id, err := sc.Store.Create(c.Request.Context(), store.SOSAlerts, fields)
	if err != nil {
		logrus.WithError(err).WithField("student_id", input.StudentID).Error("SOS alert write failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not record SOS alert: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"student_id": input.StudentID,
		"alert_id":   id,
	}).Warn("SOS alert raised")

	if sc.Hub != nil {
		sc.Hub.Publish(Frame{Type: "sos", Payload: gin.H{"id": id, "studentId": input.StudentID, "message": input.Message}})
	}
	c.JSON(http.StatusCreated, gin.H{"status": "raised", "id": id})
}
