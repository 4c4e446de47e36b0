package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"steam-bff-backend/internal/model"
)

// Store defines the user directory operations.
type Store interface {
	EnsureUser(ctx context.Context, profile UserProfile, now time.Time) (*model.User, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// EnsureUser looks the user up by steam id and creates it when missing.
// Repeated calls for the same id never create a second row; they refresh
// LastLoginAt and any non-empty profile fields.
func (s *gormStore) EnsureUser(ctx context.Context, profile UserProfile, now time.Time) (*model.User, error) {
	if profile.SteamID == "" {
		return nil, errors.New("steam id is required")
	}

	fields := model.User{
		PersonaName: profile.PersonaName,
		AvatarURL:   profile.AvatarURL,
		ProfileURL:  profile.ProfileURL,
		CountryCode: profile.CountryCode,
		LastLoginAt: now,
	}

	var user model.User
	err := s.db.WithContext(ctx).
		Where(model.User{SteamID: profile.SteamID}).
		Attrs(model.User{CreatedAt: now}).
		Assign(fields).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to provision user %s: %w", profile.SteamID, err)
	}
	return &user, nil
}
