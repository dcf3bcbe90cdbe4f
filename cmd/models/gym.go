package models

import (
	"time"

	"gorm.io/gorm"
)

type GymOwner struct {
	gorm.Model
	FullName     string `gorm:"column:full_name;size:255;not null" json:"full_name"`
	GymName      string `gorm:"column:gym_name;size:255;not null" json:"gym_name"`
	Email        string `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
	Phone        string `gorm:"column:phone;size:20" json:"phone"`
}

type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	OwnerID   uint      `gorm:"not null"`
	Token     string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"default:false"`
}

// GymProfile is the single display-context record for the gym.
type GymProfile struct {
	gorm.Model
	GymName   string `gorm:"column:gym_name;size:255;not null" json:"gym_name"`
	OwnerName string `gorm:"column:owner_name;size:255" json:"owner_name"`
	Email     string `gorm:"column:email;size:255" json:"email"`
	Phone     string `gorm:"column:phone;size:20" json:"phone"`
	Address   string `gorm:"column:address;type:text" json:"address"`
}
