package handlers

import (
	"strconv"

	"github.com/famride/famride-backend/internal/observability"
	"github.com/famride/famride-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// Geocode resolves a free-text address to coordinates.
func Geocode() gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Query("address")
		if address == "" {
			c.JSON(400, gin.H{"error": "address query parameter required"})
			return
		}

		geocoder := services.GetGeocoder()
		if geocoder == nil {
			c.JSON(502, gin.H{"error": "Geocoding is not available"})
			return
		}

		ctx := c.Request.Context()
		var cached services.GeocodeResult
		if err := services.GetCachedGeocodeResult(ctx, "fwd:"+address, &cached); err == nil {
			c.JSON(200, gin.H{"result": cached})
			return
		}

		result, err := geocoder.Forward(ctx, address)
		if err != nil {
			observability.GeocodeErrorsTotal.Inc()
			c.JSON(502, gin.H{"error": "Geocoding provider unavailable"})
			return
		}

		services.CacheGeocodeResult(ctx, "fwd:"+address, result)
		c.JSON(200, gin.H{"result": result})
	}
}

// ReverseGeocode resolves coordinates to the nearest address.
func ReverseGeocode() gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, errLat := strconv.ParseFloat(c.Query("latitude"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("longitude"), 64)
		if errLat != nil || errLng != nil {
			c.JSON(400, gin.H{"error": "latitude and longitude query parameters required"})
			return
		}

		geocoder := services.GetGeocoder()
		if geocoder == nil {
			c.JSON(502, gin.H{"error": "Geocoding is not available"})
			return
		}

		result, err := geocoder.Reverse(c.Request.Context(), lat, lng)
		if err != nil {
			observability.GeocodeErrorsTotal.Inc()
			c.JSON(502, gin.H{"error": "Geocoding provider unavailable"})
			return
		}

		c.JSON(200, gin.H{"result": result})
	}
}

// SuggestAddresses returns autocomplete candidates for a partial address.
// Provider failures degrade to an empty list so the ride form keeps working.
func SuggestAddresses() gin.HandlerFunc {
	return func(c *gin.Context) {
		input := c.Query("q")
		if input == "" {
			c.JSON(200, gin.H{"suggestions": []services.Suggestion{}})
			return
		}

		geocoder := services.GetGeocoder()
		if geocoder == nil {
			c.JSON(200, gin.H{"suggestions": []services.Suggestion{}})
			return
		}

		suggestions, err := geocoder.Suggest(c.Request.Context(), input)
		if err != nil {
			observability.GeocodeErrorsTotal.Inc()
			c.JSON(200, gin.H{"suggestions": []services.Suggestion{}})
			return
		}

		c.JSON(200, gin.H{"suggestions": suggestions})
	}
}
