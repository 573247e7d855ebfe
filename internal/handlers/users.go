package handlers

import (
	"time"

	"github.com/famride/famride-backend/internal/models"
	"github.com/famride/famride-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetProfile returns the authenticated user's profile
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{"user": user})
	}
}

// UpdateProfile updates name, phone and the driver flag
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Name     string `json:"name" binding:"required"`
			Phone    string `json:"phone"`
			IsDriver *bool  `json:"is_driver"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		user.Name = input.Name
		user.Phone = input.Phone
		if input.IsDriver != nil {
			user.IsDriver = *input.IsDriver
			// A member who stops driving cannot stay available
			if !user.IsDriver {
				user.IsAvailable = false
			}
		}

		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Update failed"})
			return
		}

		c.JSON(200, gin.H{"success": true, "user": user})
	}
}

// UpdateLocation records a location ping and availability toggle. The
// database is authoritative; Redis gets a write-through copy for the
// polling dashboard.
func UpdateLocation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Latitude    *float64 `json:"latitude" binding:"required"`
			Longitude   *float64 `json:"longitude" binding:"required"`
			IsAvailable bool     `json:"is_available"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Latitude and longitude required"})
			return
		}

		now := time.Now()
		updates := map[string]interface{}{
			"last_latitude":        *input.Latitude,
			"last_longitude":       *input.Longitude,
			"is_available":         input.IsAvailable,
			"last_location_update": now,
		}

		if err := db.Model(&models.User{}).Where("id = ?", userId).Updates(updates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Location update failed"})
			return
		}

		// Cache writes are best effort
		ctx := c.Request.Context()
		services.SetUserLocation(ctx, userId, *input.Latitude, *input.Longitude)
		services.SetDriverAvailability(ctx, userId, input.IsAvailable)

		c.JSON(200, gin.H{"success": true})
	}
}
