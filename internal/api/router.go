package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"steam-bff-backend/internal/cache"
	"steam-bff-backend/internal/mw"
)

// limiterIdleTTL is how long a client's rate limit bucket outlives its last request.
const limiterIdleTTL = 10 * time.Minute

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, skinCache *cache.Cache[mw.CachedResponse], log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(mw.Logger(log), gin.Recovery())

	limiter := mw.NewIPRateLimiter(rate.Limit(h.cfg.RateLimitPerSec), h.cfg.RateLimitBurst, limiterIdleTTL)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(limiter))
	{
		api.GET("/auth/steam", h.SteamLogin)
		api.GET("/auth/steam/callback", h.SteamCallback)
		api.GET("/steam-image", h.ProxyImage)

		steam := api.Group("/steam")
		steam.GET("/inventory/:steamId/:appId", h.GetInventory)
		steam.GET("/inventory/:steamId", h.GetInventory)
		steam.GET("/test-inventory/:steamId", h.TestInventory)
		steam.GET("/user/:steamId", h.GetUser)
		steam.GET("/market/*marketHashName", h.GetMarketPrice)
		steam.GET("/item-details/*inspectLink", h.GetItemDetails)
		steam.GET("/skin/*marketHashName", mw.ResponseCache(skinCache), h.GetSkin)
	}

	r.NoRoute(SPA(h.cfg.StaticDir))
	return r
}
