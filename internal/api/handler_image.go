package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const imageCacheControl = "public, max-age=86400"

type imageQuery struct {
	URL string `form:"url" binding:"required"`
}

// ProxyImage handles GET /api/steam-image?url=.
func (h *Handler) ProxyImage(c *gin.Context) {
	var q imageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	resp, err := h.steam.Image(upstreamContext(c), q.URL)
	if err != nil {
		abortWithUpstreamError(c, err)
		return
	}

	contentType := resp.ContentType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", imageCacheControl)
	c.Data(http.StatusOK, contentType, resp.Body)
}
