package steam

import (
	"context"
	"fmt"
	"net/url"

	"steam-bff-backend/config"
	"steam-bff-backend/internal/normalize"
	"steam-bff-backend/internal/upstream"
)

// ProfileLookup resolves a steam id to a GetPlayerSummaries-shaped answer.
type ProfileLookup interface {
	Lookup(ctx context.Context, steamID string) (normalize.PlayerSummaries, error)
	Name() string
}

// NewProfileLookup picks the official Web API when an API key is configured
// and the public community XML profile otherwise.
func NewProfileLookup(cfg config.SteamConfig, client *upstream.Client) ProfileLookup {
	if cfg.APIKey != "" {
		return &APIProfileLookup{client: client, baseURL: cfg.APIURL, apiKey: cfg.APIKey}
	}
	return &CommunityProfileLookup{client: client, baseURL: cfg.CommunityURL}
}

// APIProfileLookup queries ISteamUser/GetPlayerSummaries.
type APIProfileLookup struct {
	client  *upstream.Client
	baseURL string
	apiKey  string
}

// Name implements ProfileLookup.
func (l *APIProfileLookup) Name() string { return "web-api" }

// Lookup fetches the summary of one player. Needs a Web API key.
func (l *APIProfileLookup) Lookup(ctx context.Context, steamID string) (normalize.PlayerSummaries, error) {
	q := url.Values{}
	q.Set("key", l.apiKey)
	q.Set("steamids", steamID)
	resp, err := l.client.Get(ctx, l.baseURL+"/ISteamUser/GetPlayerSummaries/v0002/?"+q.Encode())
	return normalize.PlayersFromAPI(resp, err)
}

// CommunityProfileLookup reads the public "?xml=1" rendering of a profile page.
type CommunityProfileLookup struct {
	client  *upstream.Client
	baseURL string
}

// Name implements ProfileLookup.
func (l *CommunityProfileLookup) Name() string { return "community-xml" }

// Lookup fetches the profile XML and reshapes it like the Web API answer.
// Private profiles still yield a name and avatars.
func (l *CommunityProfileLookup) Lookup(ctx context.Context, steamID string) (normalize.PlayerSummaries, error) {
	resp, err := l.client.Get(ctx, fmt.Sprintf("%s/profiles/%s/?xml=1", l.baseURL, url.PathEscape(steamID)))
	return normalize.PlayersFromXML(resp, err, l.baseURL)
}
