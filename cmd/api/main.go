package main

import (
	"log"
	"os"
	"time"

	"github.com/famride/famride-backend/internal/database"
	"github.com/famride/famride-backend/internal/handlers"
	"github.com/famride/famride-backend/internal/logging"
	"github.com/famride/famride-backend/internal/middleware"
	"github.com/famride/famride-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	logger := logging.NewLogger(os.Getenv("LOG_LEVEL"))

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Geocoding is optional; address endpoints return errors when unset.
	if err := services.InitGeocoder(); err != nil {
		logger.Warn("geocoder not configured", "error", err)
	}

	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	r.Use(middleware.MetricsMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			user := protected.Group("/user")
			{
				user.GET("/profile", handlers.GetProfile(db))
				user.PUT("/profile", handlers.UpdateProfile(db))
				user.POST("/location", handlers.UpdateLocation(db))
			}

			groups := protected.Group("/groups")
			{
				groups.POST("", handlers.CreateGroup(db))
				groups.POST("/join", handlers.JoinGroup(db))
				groups.GET("", handlers.GetGroups(db))
				groups.GET("/:id/members", handlers.GetGroupMembers(db))
				groups.DELETE("/:id", handlers.DeleteGroup(db))
				groups.PUT("/:id/transfer-admin", handlers.TransferAdmin(db))
			}

			rides := protected.Group("/rides")
			{
				rides.POST("", handlers.CreateRide(db))
				rides.GET("", handlers.GetRides(db))
				rides.GET("/history", handlers.GetRideHistory(db))
				rides.GET("/available", handlers.GetOpenRides(db))
				rides.PUT("/:id", handlers.UpdateRide(db))
				rides.POST("/:id/duplicate", handlers.DuplicateRide(db))
				rides.GET("/:id/available-drivers", handlers.GetAvailableDrivers(db))
				rides.POST("/:id/offer", handlers.CreateRideOffer(db))
				rides.POST("/:id/accept-offer/:offerId", handlers.AcceptRideOffer(db))
				rides.POST("/:id/accept", handlers.AcceptRide(db))
				rides.POST("/:id/deaccept", handlers.DeacceptRide(db))
				rides.PUT("/:id/status", handlers.UpdateRideStatus(db))
			}

			geo := protected.Group("/geocode")
			{
				geo.GET("", handlers.Geocode())
				geo.GET("/reverse", handlers.ReverseGeocode())
				geo.GET("/suggest", handlers.SuggestAddresses())
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
