package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-bff-backend/internal/normalize"
)

func TestService_ValidateImageURL(t *testing.T) {
	svc := NewService(testConfig("http://127.0.0.1"), nil)
	svc.cfg.ImageHosts = []string{"community.cloudflare.steamstatic.com", "steamcommunity-a.akamaihd.net"}

	testCases := []struct {
		name  string
		url   string
		valid bool
	}{
		{"Cloudflare CDN", "https://community.cloudflare.steamstatic.com/economy/image/abc/360fx360f", true},
		{"Akamai CDN", "https://steamcommunity-a.akamaihd.net/economy/image/abc", true},
		{"Host is case insensitive", "https://Community.Cloudflare.SteamStatic.com/x.png", true},
		{"Other host", "https://evil.example.com/x.png", false},
		{"Suffix trick", "https://community.cloudflare.steamstatic.com.evil.example/x.png", false},
		{"Userinfo trick", "https://community.cloudflare.steamstatic.com@evil.example/x.png", false},
		{"Unsupported scheme", "file:///etc/passwd", false},
		{"Not a URL", "::::", false},
		{"Empty", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ValidateImageURL(tc.url)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidImageURL)
			}
		})
	}
}

func TestService_Image(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0xff}
	svc, server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	resp, err := svc.Image(context.Background(), server.URL+"/economy/image/abc.png")
	require.NoError(t, err)
	assert.Equal(t, png, resp.Body)
	assert.Equal(t, "image/png", resp.ContentType())

	_, err = svc.Image(context.Background(), server.URL+"/missing.png")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, normalize.StatusOf(err))
}

func TestService_Image_RejectsBeforeFetching(t *testing.T) {
	var hits atomic.Int32
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	svc.cfg.ImageHosts = []string{"community.cloudflare.steamstatic.com"}

	_, err := svc.Image(context.Background(), "https://evil.example.com/x.png")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, normalize.StatusOf(err))
	assert.ErrorIs(t, err, ErrInvalidImageURL)
	assert.Equal(t, int32(0), hits.Load())
}

func TestService_Image_FollowsAllowedRedirects(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/economy/image/old" {
			http.Redirect(w, r, "/economy/image/new", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		fmt.Fprint(w, "jpeg")
	})

	resp, err := svc.Image(context.Background(), svc.cfg.CommunityURL+"/economy/image/old")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", resp.Text())
}

func TestService_Image_RefusesRedirectOffAllowList(t *testing.T) {
	var foreignHits atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits.Add(1)
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "internal secret")
	}))
	defer foreign.Close()

	// Same listener, but reached through a host name that is not allowed.
	target := strings.Replace(foreign.URL, "127.0.0.1", "localhost", 1) + "/secret"
	svc, server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	})

	resp, err := svc.Image(context.Background(), server.URL+"/economy/image/abc")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, http.StatusBadRequest, normalize.StatusOf(err))
	assert.ErrorIs(t, err, ErrInvalidImageURL)
	assert.Equal(t, int32(0), foreignHits.Load())
}
