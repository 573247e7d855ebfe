package handlers

import (
	"strconv"
	"time"

	"github.com/famride/famride-backend/internal/models"
	"github.com/famride/famride-backend/internal/observability"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AcceptRide lets an available driver claim a requested ride. The claim is a
// conditional update guarded on status = 'requested'; after the write the
// ride's driver_id is re-read, and a mismatch means another driver won the
// race. The loser gets a 409 and the ride keeps whichever driver actually
// won. This is the only place that needs a real concurrency guarantee.
func AcceptRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverId := c.GetUint("userId")
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var driver models.User
		if err := db.First(&driver, driverId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}
		if !driver.IsDriver {
			c.JSON(403, gin.H{"error": "Only drivers can accept rides"})
			return
		}
		if !driver.IsAvailable {
			c.JSON(400, gin.H{"error": "You must be available to accept rides"})
			return
		}

		var ride models.Ride
		err = db.Joins("JOIN group_members gm ON gm.group_id = rides.group_id AND gm.deleted_at IS NULL").
			Where("rides.id = ? AND gm.user_id = ? AND rides.status = ? AND rides.requester_id != ?",
				rideId, driverId, models.RideStatusRequested, driverId).
			First(&ride).Error
		if err != nil {
			c.JSON(404, gin.H{"error": "Ride not found, already taken, or you cannot accept your own ride"})
			return
		}

		// Conditional claim; succeeds for at most one concurrent caller.
		err = db.Model(&models.Ride{}).
			Where("id = ? AND status = ?", rideId, models.RideStatusRequested).
			Updates(map[string]interface{}{
				"driver_id":   driverId,
				"status":      models.RideStatusAccepted,
				"accepted_at": time.Now(),
			}).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to accept ride request"})
			return
		}

		// Re-read to find out who actually holds the ride now.
		var updated models.Ride
		if err := db.First(&updated, rideId).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to accept ride request"})
			return
		}
		if updated.DriverID == nil || *updated.DriverID != driverId {
			observability.AcceptConflictTotal.Inc()
			c.JSON(409, gin.H{"error": "Ride was accepted by another driver"})
			return
		}

		observability.RidesAcceptedTotal.Inc()
		c.JSON(200, gin.H{"success": true, "message": "Ride request accepted successfully"})
	}
}

// DeacceptRide reverses the assigned driver's acceptance and returns the
// ride to the open pool.
func DeacceptRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverId := c.GetUint("userId")
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var ride models.Ride
		if err := db.First(&ride, rideId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		if ride.DriverID == nil || *ride.DriverID != driverId {
			c.JSON(403, gin.H{"error": "You can only cancel rides you have accepted"})
			return
		}
		if ride.Status != models.RideStatusAccepted {
			c.JSON(400, gin.H{"error": "Can only cancel accepted rides (not picked up or completed)"})
			return
		}

		err = db.Model(&models.Ride{}).
			Where("id = ? AND status = ? AND driver_id = ?", rideId, models.RideStatusAccepted, driverId).
			Updates(map[string]interface{}{
				"driver_id":   nil,
				"status":      models.RideStatusRequested,
				"accepted_at": nil,
			}).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel ride acceptance"})
			return
		}

		c.JSON(200, gin.H{"success": true, "message": "Ride acceptance cancelled - request is now available for other drivers"})
	}
}

// UpdateRideStatus moves a ride to picked_up, completed or cancelled.
// Cancellation is requester-only and allowed only while the ride is
// requested or accepted; cancelling an accepted ride releases its driver.
func UpdateRideStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,oneof=picked_up completed cancelled"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Invalid status"})
			return
		}

		var ride models.Ride
		if err := db.First(&ride, rideId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		isRequester := ride.RequesterID == userId
		isDriver := ride.DriverID != nil && *ride.DriverID == userId
		if !isRequester && !isDriver {
			c.JSON(403, gin.H{"error": "Not authorized to update this ride"})
			return
		}

		if input.Status == models.RideStatusCancelled {
			if !isRequester {
				c.JSON(403, gin.H{"error": "Only the ride requester can cancel a ride"})
				return
			}
			if ride.Status != models.RideStatusRequested && ride.Status != models.RideStatusAccepted {
				c.JSON(400, gin.H{"error": "Cannot cancel ride that is already picked up or completed"})
				return
			}
		} else if !models.CanTransition(ride.Status, input.Status) {
			c.JSON(400, gin.H{"error": "Invalid status transition from " + ride.Status + " to " + input.Status})
			return
		}

		updates := map[string]interface{}{"status": input.Status}
		now := time.Now()
		switch input.Status {
		case models.RideStatusPickedUp:
			updates["pickup_time"] = now
		case models.RideStatusCompleted:
			updates["completed_at"] = now
		case models.RideStatusCancelled:
			// A cancelled ride carries no driver assignment.
			updates["driver_id"] = nil
		}

		// Guard on the status we just validated against, so a concurrent
		// transition fails instead of being overwritten.
		result := db.Model(&models.Ride{}).
			Where("id = ? AND status = ?", rideId, ride.Status).
			Updates(updates)
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to update ride status"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(409, gin.H{"error": "Ride status changed, please refresh"})
			return
		}

		c.JSON(200, gin.H{"success": true})
	}
}
