package model

import "time"

// User is a Steam account that has signed in at least once.
type User struct {
	SteamID     string    `gorm:"primaryKey;size:32"`
	PersonaName string    `gorm:"size:128"`
	AvatarURL   string    `gorm:"size:512"`
	ProfileURL  string    `gorm:"size:512"`
	CountryCode string    `gorm:"size:8"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	LastLoginAt time.Time `gorm:"not null;index"`
}
