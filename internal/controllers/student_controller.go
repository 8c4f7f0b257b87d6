package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/models"
	"shuttle_tracker/internal/store"
)

// StudentController serves the seeded student roster.
type StudentController struct {
	Store store.Gateway
}

// ListStudents returns every student record.
func (sc *StudentController) ListStudents(c *gin.Context) {
	docs, err := sc.Store.ReadAll(c.Request.Context(), store.Students)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error listing students: " + err.Error()})
		return
	}
	students := make([]models.Student, 0, len(docs))
	for _, doc := range docs {
		var student models.Student
		if err := store.Decode(doc, &student); err != nil {
			logrus.WithError(err).WithField("student_id", doc.ID).Warn("Skipping undecodable student record")
			continue
		}
		students = append(students, student)
	}
	c.JSON(http.StatusOK, gin.H{"data": students})
}
