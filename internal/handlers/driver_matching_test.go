package handlers

import (
	"math"
	"testing"

	"github.com/famride/famride-backend/internal/models"
)

func TestRankDriversByDistance(t *testing.T) {
	// Pickup in lower Manhattan; candidates at increasing distance north.
	pickupLat, pickupLng := 40.7128, -74.0060

	candidates := []DriverCandidate{
		{ID: 1, Name: "Far", Latitude: 40.8500, Longitude: -74.0060},
		{ID: 2, Name: "Near", Latitude: 40.7200, Longitude: -74.0060},
		{ID: 3, Name: "Middle", Latitude: 40.7600, Longitude: -74.0060},
	}

	ranked := RankDriversByDistance(candidates, pickupLat, pickupLng)

	if len(ranked) != 3 {
		t.Fatalf("got %d ranked drivers, want 3", len(ranked))
	}
	wantOrder := []uint{2, 3, 1}
	for i, want := range wantOrder {
		if ranked[i].ID != want {
			t.Errorf("position %d: driver %d, want %d", i, ranked[i].ID, want)
		}
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i].DistanceKm < ranked[i-1].DistanceKm {
			t.Errorf("ranking not ascending at position %d", i)
		}
	}

	// ETA is ceil(km * 2) for every entry.
	for _, d := range ranked {
		want := int(math.Ceil(d.DistanceKm * 2))
		if d.EstimatedArrivalMinutes != want {
			t.Errorf("driver %d: ETA %d, want %d", d.ID, d.EstimatedArrivalMinutes, want)
		}
	}
}

func TestRankDriversByDistance_Empty(t *testing.T) {
	ranked := RankDriversByDistance(nil, 40.7, -74.0)
	if len(ranked) != 0 {
		t.Errorf("got %d ranked drivers from empty input", len(ranked))
	}
}

func TestRankDriversByDistance_StableOnTies(t *testing.T) {
	candidates := []DriverCandidate{
		{ID: 1, Latitude: 40.75, Longitude: -74.0},
		{ID: 2, Latitude: 40.75, Longitude: -74.0},
		{ID: 3, Latitude: 40.75, Longitude: -74.0},
	}
	ranked := RankDriversByDistance(candidates, 40.7128, -74.0060)
	for i, want := range []uint{1, 2, 3} {
		if ranked[i].ID != want {
			t.Errorf("tied candidates reordered: position %d is driver %d", i, ranked[i].ID)
		}
	}
}

func openRide(id uint, driverID *uint, status string, miles float64) OpenRide {
	ride := models.Ride{Status: status, DriverID: driverID}
	ride.ID = id
	return OpenRide{rideRow: rideRow{Ride: ride}, DistanceMiles: miles}
}

func TestSortOpenRides(t *testing.T) {
	me := uint(10)
	other := uint(20)

	rides := []OpenRide{
		openRide(1, nil, models.RideStatusRequested, 5.0),
		openRide(2, &me, models.RideStatusAccepted, 9.0),
		openRide(3, nil, models.RideStatusRequested, 1.0),
		openRide(4, &other, models.RideStatusAccepted, 0.5),
		openRide(5, &me, models.RideStatusAccepted, 2.0),
	}

	SortOpenRides(rides, me)

	// Rides accepted by this driver come first, by distance; then the rest
	// by distance.
	wantOrder := []uint{5, 2, 4, 3, 1}
	for i, want := range wantOrder {
		if rides[i].ID != want {
			t.Errorf("position %d: ride %d, want %d", i, rides[i].ID, want)
		}
	}
}

func TestSortOpenRides_NoAccepted(t *testing.T) {
	rides := []OpenRide{
		openRide(1, nil, models.RideStatusRequested, 3.0),
		openRide(2, nil, models.RideStatusRequested, 1.0),
		openRide(3, nil, models.RideStatusRequested, 2.0),
	}

	SortOpenRides(rides, 10)

	for i, want := range []uint{2, 3, 1} {
		if rides[i].ID != want {
			t.Errorf("position %d: ride %d, want %d", i, rides[i].ID, want)
		}
	}
}
