package store

import "steam-bff-backend/internal/normalize"

// UserProfile carries what is known about a user at sign-in. Only SteamID is
// required; empty fields never overwrite stored values.
type UserProfile struct {
	SteamID     string
	PersonaName string
	AvatarURL   string
	ProfileURL  string
	CountryCode string
}

// ProfileFromPlayer copies the fields of a profile summary into a UserProfile.
func ProfileFromPlayer(steamID string, p normalize.Player) UserProfile {
	return UserProfile{
		SteamID:     steamID,
		PersonaName: p.PersonaName,
		AvatarURL:   p.AvatarFull,
		ProfileURL:  p.ProfileURL,
		CountryCode: p.LocCountryCode,
	}
}
