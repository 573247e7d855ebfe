package utils

import (
	"math"
)

const (
	// EarthRadiusKm is the mean Earth radius used for kilometer distances.
	EarthRadiusKm = 6371
	// EarthRadiusMiles is the Earth radius used for mile distances. The
	// driver-facing open-rides list reports miles; everything else uses km.
	EarthRadiusMiles = 3959
)

// HaversineDistance calculates the great-circle distance between two points
// using the Haversine formula. Returns distance in kilometers.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	return haversine(lat1, lng1, lat2, lng2, EarthRadiusKm)
}

// HaversineDistanceMiles is the mile variant of HaversineDistance.
func HaversineDistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	return haversine(lat1, lng1, lat2, lng2, EarthRadiusMiles)
}

func haversine(lat1, lng1, lat2, lng2, radius float64) float64 {
	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return radius * c
}

// EstimateArrivalMinutes derives a rough pickup ETA from distance using a
// fixed 2 minutes per kilometer heuristic. This is an approximation of
// average city driving, not a routing estimate.
func EstimateArrivalMinutes(distanceKm float64) int {
	return int(math.Ceil(distanceKm * 2))
}

// CalculateETA estimates the time to arrival based on distance and average speed
// distance in kilometers, averageSpeed in km/h
func CalculateETA(distanceKm, averageSpeedKmh float64) int {
	if averageSpeedKmh <= 0 {
		averageSpeedKmh = 30 // Default average speed in city traffic
	}

	etaHours := distanceKm / averageSpeedKmh
	etaMinutes := int(etaHours * 60)

	// Minimum 1 minute
	if etaMinutes < 1 {
		etaMinutes = 1
	}

	return etaMinutes
}

// ValidCoordinates checks that a latitude/longitude pair is on Earth.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
