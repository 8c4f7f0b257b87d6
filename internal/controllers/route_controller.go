package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"shuttle_tracker/internal/tracker"
)

// RouteController serves route itineraries and render-ready paths.
type RouteController struct {
	Tracker *tracker.Synchronizer
}

// GetRoute returns one route, falling back to the first route in the
// store and finally the mock route.
func (rc *RouteController) GetRoute(c *gin.Context) {
	reading := rc.Tracker.GetRoute(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"route": reading.Route, "origin": reading.Origin})
}

// ListRoutes returns every route in the store.
func (rc *RouteController) ListRoutes(c *gin.Context) {
	routes, err := rc.Tracker.ListRoutes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error listing routes: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": routes})
}

// GetRoutePath returns the route's rendering path as a GeoJSON
// LineString for map polylines.
func (rc *RouteController) GetRoutePath(c *gin.Context) {
	reading := rc.Tracker.GetRoute(c.Request.Context(), c.Param("id"))
	raw, err := gjson.Marshal(tracker.PathLineString(reading.Route))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode route path: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", raw)
}
