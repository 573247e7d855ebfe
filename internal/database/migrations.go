package database

import (
	"github.com/famride/famride-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Ride{},
		&models.RideOffer{},
	)
	if err != nil {
		return err
	}

	// Update rides table
	if db.Migrator().HasTable(&models.Ride{}) {
		columns := []string{
			"ADD COLUMN IF NOT EXISTS passenger_count integer DEFAULT 1",
			"ADD COLUMN IF NOT EXISTS notes text DEFAULT ''",
			"ADD COLUMN IF NOT EXISTS pickup_time timestamptz",
			"ADD COLUMN IF NOT EXISTS completed_at timestamptz",
		}

		for _, column := range columns {
			if err := db.Exec("ALTER TABLE rides " + column).Error; err != nil {
				return err
			}
		}

		// Update constraint
		db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_status_check`)
		db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_status_check CHECK (status IN ('requested', 'accepted', 'picked_up', 'completed', 'cancelled'))`)

		// A driver is assigned exactly while the ride is accepted, picked up
		// or completed.
		db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_driver_status_check`)
		db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_driver_status_check CHECK (
			(driver_id IS NOT NULL AND status IN ('accepted', 'picked_up', 'completed'))
			OR (driver_id IS NULL AND status IN ('requested', 'cancelled'))
		)`)
	}

	if db.Migrator().HasTable(&models.Ride{}) {
		// The open-rides query filters on status within a group.
		db.Exec(`CREATE INDEX IF NOT EXISTS idx_rides_group_status ON rides (group_id, status)`)
		db.Exec(`CREATE INDEX IF NOT EXISTS idx_rides_requester_status ON rides (requester_id, status)`)
	}

	return nil
}
