package tracker

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"

	"shuttle_tracker/internal/models"
)

// PathLineString converts a route's rendering coordinates into a
// LineString (lng/lat axis order, SRID 4326 convention).
func PathLineString(route models.Route) *geom.LineString {
	coords := make([]geom.Coord, 0, len(route.Coordinates))
	for _, c := range route.Coordinates {
		coords = append(coords, geom.Coord{c.Longitude, c.Latitude})
	}
	ls := geom.NewLineString(geom.XY)
	if len(coords) > 0 {
		ls.MustSetCoords(coords)
	}
	return ls
}

// EstimateETA scales the route's scheduled duration by the fraction of
// path remaining past the vertex nearest the bus, e.g. "12 min". Routes
// without a usable path fall back to the scheduled duration.
func EstimateETA(route models.Route, loc models.Coordinate) string {
	if route.EstimatedDuration <= 0 {
		return ""
	}
	path := PathLineString(route)
	coords := path.Coords()
	if len(coords) < 2 {
		return fmt.Sprintf("%d min", route.EstimatedDuration)
	}

	nearest := 0
	best := math.Inf(1)
	for i, c := range coords {
		d := haversineMeters(loc.Latitude, loc.Longitude, c[1], c[0])
		if d < best {
			best = d
			nearest = i
		}
	}

	total := 0.0
	remaining := 0.0
	for i := 1; i < len(coords); i++ {
		seg := haversineMeters(coords[i-1][1], coords[i-1][0], coords[i][1], coords[i][0])
		total += seg
		if i > nearest {
			remaining += seg
		}
	}
	if total == 0 {
		return fmt.Sprintf("%d min", route.EstimatedDuration)
	}

	minutes := int(math.Ceil(float64(route.EstimatedDuration) * remaining / total))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min", minutes)
}

// haversineMeters is the great-circle distance between two points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
