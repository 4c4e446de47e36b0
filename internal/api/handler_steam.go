package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"steam-bff-backend/internal/normalize"
)

// wildcard returns a catch-all route parameter without its leading slash.
func wildcard(c *gin.Context, name string) string {
	return strings.TrimPrefix(c.Param(name), "/")
}

func abortWithUpstreamError(c *gin.Context, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(normalize.StatusOf(err), gin.H{"error": normalize.MessageOf(err)})
}

// GetInventory handles GET /api/steam/inventory/:steamId[/:appId].
// It always answers 200.
func (h *Handler) GetInventory(c *gin.Context) {
	inv := h.steam.Inventory(upstreamContext(c), c.Param("steamId"), c.Param("appId"), "")
	c.JSON(http.StatusOK, inv)
}

// TestInventory handles GET /api/steam/test-inventory/:steamId.
func (h *Handler) TestInventory(c *gin.Context) {
	c.JSON(http.StatusOK, h.steam.TestInventory(upstreamContext(c), c.Param("steamId")))
}

// GetUser handles GET /api/steam/user/:steamId.
func (h *Handler) GetUser(c *gin.Context) {
	summaries, err := h.steam.Profile(upstreamContext(c), c.Param("steamId"))
	if err != nil {
		abortWithUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetMarketPrice handles GET /api/steam/market/*marketHashName.
func (h *Handler) GetMarketPrice(c *gin.Context) {
	name := wildcard(c, "marketHashName")
	if name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "market hash name is required"})
		return
	}
	c.JSON(http.StatusOK, h.steam.MarketPrice(upstreamContext(c), name))
}

// GetItemDetails handles GET /api/steam/item-details/*inspectLink.
func (h *Handler) GetItemDetails(c *gin.Context) {
	link := wildcard(c, "inspectLink")
	if link == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "inspect link is required"})
		return
	}

	details, err := h.steam.ItemDetails(upstreamContext(c), link)
	if err != nil {
		c.Error(err)
		c.AbortWithStatusJSON(normalize.StatusOf(err), gin.H{"success": false, "error": normalize.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetSkin handles GET /api/steam/skin/*marketHashName.
func (h *Handler) GetSkin(c *gin.Context) {
	name := wildcard(c, "marketHashName")
	if name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "market hash name is required"})
		return
	}

	skin, err := h.steam.Skin(upstreamContext(c), name)
	if err != nil {
		abortWithUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, skin)
}
