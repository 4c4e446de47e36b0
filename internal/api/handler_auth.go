package api

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"steam-bff-backend/internal/parse"
	"steam-bff-backend/internal/store"
)

// SteamLogin handles GET /api/auth/steam by redirecting to Steam's OpenID login.
func (h *Handler) SteamLogin(c *gin.Context) {
	returnTo := h.cfg.PublicURL + "/api/auth/steam/callback"
	c.Redirect(http.StatusFound, h.verifier.LoginURL(returnTo, h.cfg.PublicURL))
}

// SteamCallback handles GET /api/auth/steam/callback.
func (h *Handler) SteamCallback(c *gin.Context) {
	ctx := upstreamContext(c)
	assertion := c.Request.URL.Query()

	valid, err := h.verifier.Verify(ctx, assertion)
	if err != nil {
		h.log.Warn("openid verification failed", zap.Error(err))
	}
	if err != nil || !valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid openid assertion"})
		return
	}

	steamID, ok := parse.SteamIDFromClaimedID(assertion.Get("openid.claimed_id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "could not extract steam id"})
		return
	}

	profile := store.UserProfile{SteamID: steamID}
	if summaries, err := h.steam.Profile(ctx, steamID); err == nil && len(summaries.Response.Players) > 0 {
		profile = store.ProfileFromPlayer(steamID, summaries.Response.Players[0])
	}

	if _, err := h.users.EnsureUser(ctx, profile, h.now()); err != nil {
		h.log.Error("failed to provision user", zap.String("steam_id", steamID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to provision user"})
		return
	}

	token, err := h.tokens.Issue(steamID)
	if err != nil {
		h.log.Error("failed to issue token", zap.String("steam_id", steamID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
		return
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("steamId", steamID)
	c.Redirect(http.StatusFound, h.cfg.FrontendURL+h.cfg.RedirectPath+"?"+q.Encode())
}
