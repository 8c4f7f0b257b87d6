package seed

import "shuttle_tracker/internal/models"

// Fixture fleet for a fresh store: three routes, one bus per route, and
// the pilot-program student roster. Buses and students reference routes
// by fixture position because route ids are generated at insert time.

type busFixture struct {
	name       string
	driverID   string
	capacity   int
	eta        string
	routeIndex int
}

type studentFixture struct {
	studentID  string
	name       string
	email      string
	pickup     string
	routeIndex int
}

func fixtureRoutes() []models.Route {
	return []models.Route{
		{
			Name:        "Route A - Alpha-Beta Route",
			Description: "Alpha 1 → Beta 1 → Bennett University",
			Stops: []models.Stop{
				{
					Name:          "Alpha 1",
					Address:       "Alpha 1, Greater Noida, UP, India",
					Location:      models.Coordinate{Latitude: 28.4669, Longitude: 77.5128},
					ScheduledTime: "7:30 AM",
					Students:      2,
				},
				{
					Name:          "Beta 1",
					Address:       "Beta 1, Greater Noida, UP, India",
					Location:      models.Coordinate{Latitude: 28.4808, Longitude: 77.5087},
					ScheduledTime: "7:45 AM",
					Students:      1,
				},
				{
					Name:          "Bennett University",
					Address:       "Bennett University, Greater Noida, UP, India",
					Location:      models.Coordinate{Latitude: 28.4501, Longitude: 77.5859},
					ScheduledTime: "8:15 AM",
				},
			},
			Coordinates: []models.Coordinate{
				{Latitude: 28.4669, Longitude: 77.5128},
				{Latitude: 28.4808, Longitude: 77.5087},
				{Latitude: 28.4501, Longitude: 77.5859},
			},
			EstimatedDuration: 45,
		},
		{
			Name:        "Route B - Pari Chowk Route",
			Description: "Pari Chowk → Knowledge Park → Bennett University",
			Stops: []models.Stop{
				{
					Name:          "Pari Chowk",
					Address:       "Pari Chowk, Greater Noida, UP, India",
					Location:      models.Coordinate{Latitude: 28.4701, Longitude: 77.5027},
					ScheduledTime: "7:30 AM",
					Students:      1,
				},
				{
					Name:          "Knowledge Park",
					Address:       "Knowledge Park, Greater Noida, UP, India",
					Location:      models.Coordinate{Latitude: 28.4741, Longitude: 77.4949},
					ScheduledTime: "7:50 AM",
				},
				{
					Name:          "Bennett University",
					Address:       "Bennett University, Greater Noida, UP, India",
					Location:      models.Coordinate{Latitude: 28.4501, Longitude: 77.5859},
					ScheduledTime: "8:20 AM",
				},
			},
			Coordinates: []models.Coordinate{
				{Latitude: 28.4701, Longitude: 77.5027},
				{Latitude: 28.4741, Longitude: 77.4949},
				{Latitude: 28.4501, Longitude: 77.5859},
			},
			EstimatedDuration: 50,
		},
		{
			Name:        "Route C - Gamma Route",
			Description: "Gamma I → Gamma II → Bennett University",
			Stops: []models.Stop{
				{
					Name:          "Gamma I",
					Address:       "Gamma I, Greater Noida, UP, India",
					Location:      models.Coordinate{Latitude: 28.4874, Longitude: 77.5063},
					ScheduledTime: "7:20 AM",
					Students:      1,
				},
				{
					Name:          "Gamma II",
					Address:       "Gamma II, Greater Noida, UP, India",
					Location:      models.Coordinate{Latitude: 28.4907, Longitude: 77.5025},
					ScheduledTime: "7:40 AM",
				},
				{
					Name:          "Bennett University",
					Address:       "Bennett University, Greater Noida, UP, India",
					Location:      models.Coordinate{Latitude: 28.4501, Longitude: 77.5859},
					ScheduledTime: "8:10 AM",
				},
			},
			Coordinates: []models.Coordinate{
				{Latitude: 28.4874, Longitude: 77.5063},
				{Latitude: 28.4907, Longitude: 77.5025},
				{Latitude: 28.4501, Longitude: 77.5859},
			},
			EstimatedDuration: 50,
		},
	}
}

func fixtureBuses() []busFixture {
	return []busFixture{
		{name: "Bus Alpha", driverID: "driver1", capacity: 20, eta: "45 min", routeIndex: 0},
		{name: "Bus Beta", driverID: "driver2", capacity: 18, eta: "50 min", routeIndex: 1},
		{name: "Bus Gamma", driverID: "driver3", capacity: 22, eta: "50 min", routeIndex: 2},
	}
}

func fixtureStudents() []studentFixture {
	return []studentFixture{
		{studentID: "E22CSEU0001", name: "Aditya Banerjee", email: "aditya.banerjee@bennett.edu.in", pickup: "Alpha 1", routeIndex: 0},
		{studentID: "E22CSEU0002", name: "Kshitiz Yadav", email: "kshitiz.yadav@bennett.edu.in", pickup: "Pari Chowk", routeIndex: 1},
		{studentID: "E22CSEU0003", name: "Sneyank Das", email: "sneyank.das@bennett.edu.in", pickup: "Gamma I", routeIndex: 2},
		{studentID: "E22CSEU0004", name: "Samir Chowdhary", email: "samir.chowdhary@bennett.edu.in", pickup: "Beta 1", routeIndex: 0},
	}
}
