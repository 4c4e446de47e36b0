// Package identity verifies Steam OpenID assertions and mints session tokens.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"steam-bff-backend/internal/upstream"
)

const openIDNamespace = "http://specs.openid.net/auth/2.0"

// SteamVerifier checks OpenID 2.0 assertions against Steam.
type SteamVerifier struct {
	client   *upstream.Client
	endpoint string
}

// NewSteamVerifier returns a verifier that posts to endpoint
// (normally https://steamcommunity.com/openid/login).
func NewSteamVerifier(client *upstream.Client, endpoint string) *SteamVerifier {
	return &SteamVerifier{client: client, endpoint: endpoint}
}

// Verify replays the assertion with mode check_authentication. It returns
// false for a rejected assertion and an error only when Steam could not be
// asked at all.
func (v *SteamVerifier) Verify(ctx context.Context, assertion url.Values) (bool, error) {
	if assertion.Get("openid.mode") != "id_res" {
		return false, nil
	}

	form := url.Values{}
	for key, values := range assertion {
		if strings.HasPrefix(key, "openid.") {
			form[key] = values
		}
	}
	form.Set("openid.mode", "check_authentication")

	resp, err := v.client.PostForm(ctx, v.endpoint, form)
	if err != nil {
		return false, fmt.Errorf("openid verification request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("openid verification returned status %d", resp.StatusCode)
	}
	return strings.Contains(resp.Text(), "is_valid:true"), nil
}

// LoginURL builds the checkid_setup redirect that starts a Steam login.
// returnTo is where Steam sends the assertion; realm is the site root.
func (v *SteamVerifier) LoginURL(returnTo, realm string) string {
	q := url.Values{}
	q.Set("openid.ns", openIDNamespace)
	q.Set("openid.mode", "checkid_setup")
	q.Set("openid.return_to", returnTo)
	q.Set("openid.realm", realm)
	q.Set("openid.identity", openIDNamespace+"/identifier_select")
	q.Set("openid.claimed_id", openIDNamespace+"/identifier_select")
	return v.endpoint + "?" + q.Encode()
}
