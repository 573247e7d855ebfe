package handlers

import (
	"os"
	"strconv"
	"time"

	"github.com/famride/famride-backend/internal/models"
	"github.com/famride/famride-backend/internal/observability"
	"github.com/famride/famride-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultMaxPassengers = 8

func maxPassengers() int {
	if v := os.Getenv("MAX_PASSENGERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxPassengers
}

type RideInput struct {
	GroupID              uint     `json:"group_id"`
	PickupLatitude       *float64 `json:"pickup_latitude"`
	PickupLongitude      *float64 `json:"pickup_longitude"`
	PickupAddress        string   `json:"pickup_address"`
	DestinationLatitude  *float64 `json:"destination_latitude"`
	DestinationLongitude *float64 `json:"destination_longitude"`
	DestinationAddress   string   `json:"destination_address"`
	PassengerCount       int      `json:"passenger_count"`
	Notes                string   `json:"notes"`
}

func (in *RideInput) validateCoordinates() string {
	if in.PickupLatitude == nil || in.PickupLongitude == nil ||
		in.DestinationLatitude == nil || in.DestinationLongitude == nil {
		return "Missing required fields"
	}
	if !utils.ValidCoordinates(*in.PickupLatitude, *in.PickupLongitude) ||
		!utils.ValidCoordinates(*in.DestinationLatitude, *in.DestinationLongitude) {
		return "Invalid coordinates"
	}
	return ""
}

// rideRow is a ride joined with requester/driver/group names for list views.
type rideRow struct {
	models.Ride
	RequesterName string  `json:"requester_name"`
	DriverName    *string `json:"driver_name,omitempty"`
	GroupName     string  `json:"group_name"`
}

// CreateRide creates a new ride request in one of the caller's groups
func CreateRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input RideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.GroupID == 0 {
			c.JSON(400, gin.H{"error": "Missing required fields"})
			return
		}
		if msg := input.validateCoordinates(); msg != "" {
			c.JSON(400, gin.H{"error": msg})
			return
		}
		if !isGroupMember(db, input.GroupID, userId) {
			c.JSON(403, gin.H{"error": "Not authorized for this group"})
			return
		}

		passengers := input.PassengerCount
		if passengers < 1 {
			passengers = 1
		}
		if passengers > maxPassengers() {
			c.JSON(400, gin.H{"error": "Passenger count exceeds the allowed maximum"})
			return
		}

		ride := models.Ride{
			GroupID:              input.GroupID,
			RequesterID:          userId,
			PickupLatitude:       *input.PickupLatitude,
			PickupLongitude:      *input.PickupLongitude,
			PickupAddress:        input.PickupAddress,
			DestinationLatitude:  *input.DestinationLatitude,
			DestinationLongitude: *input.DestinationLongitude,
			DestinationAddress:   input.DestinationAddress,
			PassengerCount:       passengers,
			Notes:                input.Notes,
			Status:               models.RideStatusRequested,
			RequestedAt:          time.Now(),
		}

		if err := db.Create(&ride).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create ride request"})
			return
		}

		observability.RidesCreatedTotal.Inc()
		c.JSON(201, gin.H{"ride": ride})
	}
}

// UpdateRide edits a pending ride. Only the requester may edit, and only
// while the ride is still in requested status; group and requester are
// immutable.
func UpdateRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var input RideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if msg := input.validateCoordinates(); msg != "" {
			c.JSON(400, gin.H{"error": msg})
			return
		}

		var ride models.Ride
		if err := db.First(&ride, rideId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		if ride.RequesterID != userId {
			c.JSON(403, gin.H{"error": "Only the ride requester can edit this ride"})
			return
		}
		if ride.Status != models.RideStatusRequested {
			c.JSON(400, gin.H{"error": "Can only edit rides that are still pending (requested status)"})
			return
		}

		passengers := input.PassengerCount
		if passengers < 1 {
			passengers = 1
		}
		if passengers > maxPassengers() {
			c.JSON(400, gin.H{"error": "Passenger count exceeds the allowed maximum"})
			return
		}

		ride.PickupLatitude = *input.PickupLatitude
		ride.PickupLongitude = *input.PickupLongitude
		ride.PickupAddress = input.PickupAddress
		ride.DestinationLatitude = *input.DestinationLatitude
		ride.DestinationLongitude = *input.DestinationLongitude
		ride.DestinationAddress = input.DestinationAddress
		ride.PassengerCount = passengers
		ride.Notes = input.Notes

		if err := db.Save(&ride).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update ride request"})
			return
		}

		c.JSON(200, gin.H{"ride": ride})
	}
}

// GetRides lists rides across the caller's groups, optionally filtered by
// status and group.
func GetRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		status := c.DefaultQuery("status", "all")
		groupId := c.Query("group_id")

		query := db.Table("rides").
			Select(`rides.*, u.name AS requester_name, u2.name AS driver_name, rg.name AS group_name`).
			Joins("JOIN users u ON rides.requester_id = u.id").
			Joins("LEFT JOIN users u2 ON rides.driver_id = u2.id").
			Joins("JOIN ride_groups rg ON rides.group_id = rg.id").
			Joins("JOIN group_members gm ON rg.id = gm.group_id AND gm.deleted_at IS NULL").
			Where("gm.user_id = ? AND rides.deleted_at IS NULL", userId)

		if status != "all" {
			query = query.Where("rides.status = ?", status)
		}
		if groupId != "" {
			query = query.Where("rides.group_id = ?", groupId)
		}

		var rides []rideRow
		if err := query.Order("rides.requested_at DESC").Scan(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		c.JSON(200, gin.H{"rides": rides})
	}
}

// GetRideHistory lists completed and cancelled rides with pagination.
func GetRideHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 {
			limit = 20
		}
		offset := (page - 1) * limit

		base := db.Table("rides").
			Joins("JOIN ride_groups rg ON rides.group_id = rg.id").
			Joins("JOIN group_members gm ON rg.id = gm.group_id AND gm.deleted_at IS NULL").
			Where("gm.user_id = ? AND rides.deleted_at IS NULL AND rides.status IN ?",
				userId, []string{models.RideStatusCompleted, models.RideStatusCancelled})

		var total int64
		if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to get ride history"})
			return
		}

		var rides []rideRow
		err = base.Session(&gorm.Session{}).
			Select(`rides.*, u.name AS requester_name, u2.name AS driver_name, rg.name AS group_name`).
			Joins("JOIN users u ON rides.requester_id = u.id").
			Joins("LEFT JOIN users u2 ON rides.driver_id = u2.id").
			Order("rides.requested_at DESC").
			Limit(limit).Offset(offset).
			Scan(&rides).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to get ride history"})
			return
		}

		c.JSON(200, gin.H{
			"rides": rides,
			"total": total,
			"page":  page,
			"limit": limit,
		})
	}
}

// DuplicateRide creates a fresh request copying a finished ride the caller
// requested. Only completed or cancelled rides can be duplicated.
func DuplicateRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var original models.Ride
		err = db.Where("id = ? AND requester_id = ? AND status IN ?",
			rideId, userId, []string{models.RideStatusCompleted, models.RideStatusCancelled}).
			First(&original).Error
		if err != nil {
			c.JSON(404, gin.H{"error": "Original ride not found or you cannot duplicate this ride"})
			return
		}

		// The requester may have left the group since the original ride
		if !isGroupMember(db, original.GroupID, userId) {
			c.JSON(404, gin.H{"error": "Original ride not found or you cannot duplicate this ride"})
			return
		}

		ride := models.Ride{
			GroupID:              original.GroupID,
			RequesterID:          userId,
			PickupLatitude:       original.PickupLatitude,
			PickupLongitude:      original.PickupLongitude,
			PickupAddress:        original.PickupAddress,
			DestinationLatitude:  original.DestinationLatitude,
			DestinationLongitude: original.DestinationLongitude,
			DestinationAddress:   original.DestinationAddress,
			PassengerCount:       original.PassengerCount,
			Notes:                original.Notes,
			Status:               models.RideStatusRequested,
			RequestedAt:          time.Now(),
		}

		if err := db.Create(&ride).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to duplicate ride request"})
			return
		}

		observability.RidesCreatedTotal.Inc()
		c.JSON(201, gin.H{"ride": ride})
	}
}
