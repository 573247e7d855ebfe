package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/famride/famride-backend/internal/database"
	"github.com/famride/famride-backend/internal/models"
	"github.com/famride/famride-backend/pkg/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// setupTestDB connects to the database named by FAMRIDE_TEST_DSN and resets
// its tables. Tests that need a database are skipped when the variable is
// unset.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("FAMRIDE_TEST_DSN")
	if dsn == "" {
		t.Skip("FAMRIDE_TEST_DSN not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	err = db.Exec("TRUNCATE rides, ride_offers, group_members, ride_groups, users RESTART IDENTITY CASCADE").Error
	if err != nil {
		t.Fatalf("reset tables: %v", err)
	}

	return db
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, isDriver, isAvailable bool) models.User {
	t.Helper()
	testUserSeq++
	user := models.User{
		Email:        fmt.Sprintf("user%d-%d@example.com", testUserSeq, time.Now().UnixNano()),
		Name:         fmt.Sprintf("User %d", testUserSeq),
		PasswordHash: "not-a-real-hash",
		IsDriver:     isDriver,
		IsAvailable:  isAvailable,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, creator models.User, members ...models.User) models.Group {
	t.Helper()
	code, err := utils.GenerateInviteCode()
	if err != nil {
		t.Fatalf("generate invite code: %v", err)
	}
	group := models.Group{
		Name:       "Test Group",
		InviteCode: code,
		CreatedBy:  creator.ID,
	}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create test group: %v", err)
	}

	all := append([]models.User{creator}, members...)
	for i, u := range all {
		member := models.GroupMember{GroupID: group.ID, UserID: u.ID, IsAdmin: i == 0}
		if err := db.Create(&member).Error; err != nil {
			t.Fatalf("add group member: %v", err)
		}
	}
	return group
}

func createTestRide(t *testing.T, db *gorm.DB, group models.Group, requester models.User) models.Ride {
	t.Helper()
	ride := models.Ride{
		GroupID:              group.ID,
		RequesterID:          requester.ID,
		PickupLatitude:       40.7128,
		PickupLongitude:      -74.0060,
		PickupAddress:        "123 Main St",
		DestinationLatitude:  40.6413,
		DestinationLongitude: -73.7781,
		DestinationAddress:   "JFK Airport",
		PassengerCount:       1,
		Status:               models.RideStatusRequested,
		RequestedAt:          time.Now(),
	}
	if err := db.Create(&ride).Error; err != nil {
		t.Fatalf("create test ride: %v", err)
	}
	return ride
}

// perform runs a handler against a synthetic authenticated request.
func perform(handler gin.HandlerFunc, userID uint, method, path string, params gin.Params, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	c.Set("userId", userID)

	handler(c)
	return w
}

func rideParam(id uint) gin.Params {
	return gin.Params{{Key: "id", Value: fmt.Sprint(id)}}
}

func fetchRide(t *testing.T, db *gorm.DB, id uint) models.Ride {
	t.Helper()
	var ride models.Ride
	if err := db.First(&ride, id).Error; err != nil {
		t.Fatalf("fetch ride %d: %v", id, err)
	}
	return ride
}
