package models

import (
	"time"

	"gorm.io/gorm"
)

// Ride is one transportation request moving through a fixed status lifecycle:
// requested → accepted → picked_up → completed, with cancelled reachable from
// requested or accepted. A driver is assigned exactly while the status is in
// {accepted, picked_up, completed}.
type Ride struct {
	gorm.Model
	GroupID     uint  `json:"group_id" gorm:"column:group_id;not null;index"`
	RequesterID uint  `json:"requester_id" gorm:"column:requester_id;not null;index"`
	DriverID    *uint `json:"driver_id,omitempty" gorm:"column:driver_id"`

	PickupLatitude       float64 `json:"pickup_latitude" gorm:"column:pickup_latitude;not null"`
	PickupLongitude      float64 `json:"pickup_longitude" gorm:"column:pickup_longitude;not null"`
	PickupAddress        string  `json:"pickup_address" gorm:"column:pickup_address"`
	DestinationLatitude  float64 `json:"destination_latitude" gorm:"column:destination_latitude;not null"`
	DestinationLongitude float64 `json:"destination_longitude" gorm:"column:destination_longitude;not null"`
	DestinationAddress   string  `json:"destination_address" gorm:"column:destination_address"`

	PassengerCount int    `json:"passenger_count" gorm:"column:passenger_count;not null;default:1"`
	Notes          string `json:"notes,omitempty" gorm:"column:notes"`
	Status         string `json:"status" gorm:"column:status;not null;default:'requested';index"`

	RequestedAt time.Time  `json:"requested_at" gorm:"column:requested_at;not null"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" gorm:"column:accepted_at"`
	PickupTime  *time.Time `json:"pickup_time,omitempty" gorm:"column:pickup_time"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`

	Group     *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Requester *User  `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Driver    *User  `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "rides"
}

// RideOffer records a driver volunteering for a ride, for the requester to
// pick from. At most one offer per driver per ride.
type RideOffer struct {
	gorm.Model
	RideID                  uint   `json:"ride_id" gorm:"column:ride_id;not null;uniqueIndex:idx_ride_driver"`
	DriverID                uint   `json:"driver_id" gorm:"column:driver_id;not null;uniqueIndex:idx_ride_driver"`
	EstimatedArrivalMinutes int    `json:"estimated_arrival_minutes" gorm:"column:estimated_arrival_minutes"`
	Message                 string `json:"message,omitempty" gorm:"column:message"`
	Ride                    *Ride  `json:"ride,omitempty" gorm:"foreignKey:RideID"`
	Driver                  *User  `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// TableName specifies the table name
func (RideOffer) TableName() string {
	return "ride_offers"
}

// RideStatus constants
const (
	RideStatusRequested = "requested"
	RideStatusAccepted  = "accepted"
	RideStatusPickedUp  = "picked_up"
	RideStatusCompleted = "completed"
	RideStatusCancelled = "cancelled"
)

var rideTransitions = map[string][]string{
	RideStatusRequested: {RideStatusAccepted, RideStatusCancelled},
	// accepted → requested is the deaccept path: the assigned driver backs
	// out and the ride returns to the open pool.
	RideStatusAccepted:  {RideStatusPickedUp, RideStatusCancelled, RideStatusRequested},
	RideStatusPickedUp:  {RideStatusCompleted},
	RideStatusCompleted: {},
	RideStatusCancelled: {},
}

// CanTransition reports whether a ride may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range rideTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a status has no outgoing transitions.
func IsTerminalStatus(status string) bool {
	return status == RideStatusCompleted || status == RideStatusCancelled
}

// StatusRequiresDriver reports whether a ride in the given status must have
// a driver assigned.
func StatusRequiresDriver(status string) bool {
	switch status {
	case RideStatusAccepted, RideStatusPickedUp, RideStatusCompleted:
		return true
	}
	return false
}

// ValidStatus reports whether the given string is a known ride status.
func ValidStatus(status string) bool {
	_, ok := rideTransitions[status]
	return ok
}
