package handlers

import (
	"sort"
	"strconv"
	"time"

	"github.com/famride/famride-backend/internal/models"
	"github.com/famride/famride-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DriverCandidate is a group member eligible to take a ride.
type DriverCandidate struct {
	ID                 uint       `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone,omitempty"`
	Latitude           float64    `json:"-"`
	Longitude          float64    `json:"-"`
	LastLocationUpdate *time.Time `json:"last_location_update,omitempty"`
}

// RankedDriver is a candidate with its distance to the pickup point and a
// rough arrival estimate.
type RankedDriver struct {
	DriverCandidate
	DistanceKm              float64 `json:"distance"`
	EstimatedArrivalMinutes int     `json:"estimatedArrival"`
}

// RankDriversByDistance sorts candidates by great-circle distance to the
// pickup point, closest first. The arrival estimate is ceil(km * 2), a fixed
// average-speed heuristic rather than a routing result.
func RankDriversByDistance(candidates []DriverCandidate, pickupLat, pickupLng float64) []RankedDriver {
	ranked := make([]RankedDriver, 0, len(candidates))
	for _, d := range candidates {
		dist := utils.HaversineDistance(pickupLat, pickupLng, d.Latitude, d.Longitude)
		ranked = append(ranked, RankedDriver{
			DriverCandidate:         d,
			DistanceKm:              dist,
			EstimatedArrivalMinutes: utils.EstimateArrivalMinutes(dist),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}

// OpenRide is a ride visible to a driver, with the distance from the
// driver's last location to the pickup point in miles.
type OpenRide struct {
	rideRow
	DistanceMiles float64 `json:"distance_miles"`
}

// SortOpenRides orders a driver's ride feed: rides this driver already
// accepted first, then open requests by ascending distance.
func SortOpenRides(rides []OpenRide, driverId uint) {
	mine := func(r OpenRide) bool {
		return r.DriverID != nil && *r.DriverID == driverId
	}
	sort.SliceStable(rides, func(i, j int) bool {
		if mine(rides[i]) != mine(rides[j]) {
			return mine(rides[i])
		}
		return rides[i].DistanceMiles < rides[j].DistanceMiles
	})
}

// GetAvailableDrivers lists drivers in the ride's group who could take it,
// ranked by proximity to the pickup point.
func GetAvailableDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var ride models.Ride
		if err := db.First(&ride, rideId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found or no access"})
			return
		}
		if !isGroupMember(db, ride.GroupID, userId) {
			c.JSON(404, gin.H{"error": "Ride not found or no access"})
			return
		}

		var users []models.User
		err = db.Joins("JOIN group_members gm ON gm.user_id = users.id AND gm.deleted_at IS NULL").
			Where(`gm.group_id = ? AND users.is_driver = ? AND users.is_available = ?
				AND users.last_latitude IS NOT NULL AND users.last_longitude IS NOT NULL
				AND users.id != ?`,
				ride.GroupID, true, true, ride.RequesterID).
			Find(&users).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to get available drivers"})
			return
		}

		candidates := make([]DriverCandidate, 0, len(users))
		for _, u := range users {
			candidates = append(candidates, DriverCandidate{
				ID:                 u.ID,
				Name:               u.Name,
				Email:              u.Email,
				Phone:              u.Phone,
				Latitude:           *u.LastLatitude,
				Longitude:          *u.LastLongitude,
				LastLocationUpdate: u.LastLocationUpdate,
			})
		}

		c.JSON(200, gin.H{"drivers": RankDriversByDistance(candidates, ride.PickupLatitude, ride.PickupLongitude)})
	}
}

// GetOpenRides is the driver's feed: open requests across their groups while
// they are marked available, plus any ride they have already accepted.
func GetOpenRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverId := c.GetUint("userId")

		var driver models.User
		if err := db.First(&driver, driverId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		query := db.Table("rides").
			Select(`DISTINCT rides.*, u.name AS requester_name, u2.name AS driver_name, rg.name AS group_name`).
			Joins("JOIN users u ON rides.requester_id = u.id").
			Joins("LEFT JOIN users u2 ON rides.driver_id = u2.id").
			Joins("JOIN ride_groups rg ON rides.group_id = rg.id").
			Joins("JOIN group_members gm ON rg.id = gm.group_id AND gm.deleted_at IS NULL").
			Where("gm.user_id = ? AND rides.deleted_at IS NULL AND rides.requester_id != ?", driverId, driverId)

		if driver.IsDriver && driver.IsAvailable {
			query = query.Where("(rides.status = ? OR (rides.status = ? AND rides.driver_id = ?))",
				models.RideStatusRequested, models.RideStatusAccepted, driverId)
		} else {
			// An unavailable driver still sees their own active acceptance.
			query = query.Where("rides.status = ? AND rides.driver_id = ?",
				models.RideStatusAccepted, driverId)
		}

		var rows []rideRow
		if err := query.Scan(&rows).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to get available rides"})
			return
		}

		// Distance from the driver's last known location; zero when the
		// driver has never sent a ping, matching the dashboard fallback.
		var lat, lng float64
		if driver.HasLocation() {
			lat, lng = *driver.LastLatitude, *driver.LastLongitude
		}

		rides := make([]OpenRide, 0, len(rows))
		for _, r := range rows {
			rides = append(rides, OpenRide{
				rideRow:       r,
				DistanceMiles: utils.HaversineDistanceMiles(lat, lng, r.PickupLatitude, r.PickupLongitude),
			})
		}
		SortOpenRides(rides, driverId)

		c.JSON(200, gin.H{"rides": rides})
	}
}

// CreateRideOffer records a driver's offer to take a requested ride.
func CreateRideOffer(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverId := c.GetUint("userId")
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var input struct {
			EstimatedArrivalMinutes int    `json:"estimated_arrival_minutes"`
			Message                 string `json:"message"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var ride models.Ride
		err = db.Joins("JOIN group_members gm ON gm.group_id = rides.group_id AND gm.deleted_at IS NULL").
			Where("rides.id = ? AND gm.user_id = ? AND rides.status = ? AND rides.requester_id != ?",
				rideId, driverId, models.RideStatusRequested, driverId).
			First(&ride).Error
		if err != nil {
			c.JSON(404, gin.H{"error": "Ride not found or already taken"})
			return
		}

		var existing models.RideOffer
		if err := db.Where("ride_id = ? AND driver_id = ?", rideId, driverId).First(&existing).Error; err == nil {
			c.JSON(409, gin.H{"error": "You have already made an offer for this ride"})
			return
		}

		offer := models.RideOffer{
			RideID:                  uint(rideId),
			DriverID:                driverId,
			EstimatedArrivalMinutes: input.EstimatedArrivalMinutes,
			Message:                 input.Message,
		}
		if err := db.Create(&offer).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create offer"})
			return
		}

		c.JSON(201, gin.H{"offer": offer})
	}
}

// AcceptRideOffer lets the requester assign a driver from their offers. The
// assignment uses the same conditional-update guard as a direct accept.
func AcceptRideOffer(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}
		offerId, err := strconv.ParseUint(c.Param("offerId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid offer ID"})
			return
		}

		var offer models.RideOffer
		err = db.Joins("JOIN rides ON rides.id = ride_offers.ride_id").
			Where("ride_offers.id = ? AND ride_offers.ride_id = ? AND rides.requester_id = ? AND rides.status = ?",
				offerId, rideId, userId, models.RideStatusRequested).
			First(&offer).Error
		if err != nil {
			c.JSON(404, gin.H{"error": "Ride or offer not found"})
			return
		}

		result := db.Model(&models.Ride{}).
			Where("id = ? AND status = ?", rideId, models.RideStatusRequested).
			Updates(map[string]interface{}{
				"driver_id":   offer.DriverID,
				"status":      models.RideStatusAccepted,
				"accepted_at": time.Now(),
			})
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to accept offer"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(409, gin.H{"error": "Ride was accepted by another driver"})
			return
		}

		c.JSON(200, gin.H{"success": true})
	}
}
