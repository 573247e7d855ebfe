package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email        string `json:"email" gorm:"column:email;unique;not null"`
	Name         string `json:"name" gorm:"column:name;not null"`
	Password     string `json:"-" gorm:"-"` // Temporary field for password handling
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Phone        string `json:"phone,omitempty" gorm:"column:phone"`
	IsDriver     bool   `json:"is_driver" gorm:"column:is_driver;not null;default:false"`
	IsAvailable  bool   `json:"is_available" gorm:"column:is_available;not null;default:false"`

	// Last known position, updated by location pings. Null until the first ping.
	LastLatitude       *float64   `json:"last_latitude,omitempty" gorm:"column:last_latitude"`
	LastLongitude      *float64   `json:"last_longitude,omitempty" gorm:"column:last_longitude"`
	LastLocationUpdate *time.Time `json:"last_location_update,omitempty" gorm:"column:last_location_update"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// HasLocation reports whether the user has ever sent a location ping.
func (u *User) HasLocation() bool {
	return u.LastLatitude != nil && u.LastLongitude != nil
}
