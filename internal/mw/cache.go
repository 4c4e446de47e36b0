package mw

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"steam-bff-backend/internal/cache"
)

// CachedResponse is a captured 2xx response replayed by ResponseCache.
type CachedResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache replays successful GET responses keyed by request URI for
// the lifetime of store's TTL. Hits are marked with X-Cache: HIT.
func ResponseCache(store *cache.Cache[CachedResponse]) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if cached, ok := store.Get(key); ok {
			for k, v := range cached.Header {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.Status)
			c.Writer.Write(cached.Body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Writer.Header().Set("X-Cache", "MISS")

		c.Next()

		if status := w.Status(); status >= 200 && status < 300 {
			header := w.Header().Clone()
			header.Del("X-Cache")
			header.Del(RequestIDHeader)
			store.Put(key, CachedResponse{
				Status: status,
				Header: header,
				Body:   bytes.Clone(w.body.Bytes()),
			})
		}
	}
}
