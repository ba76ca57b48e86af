package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "X-API-Key"

// apiKeyMiddleware enforces the shared-secret header before any body
// parsing happens. Comparison is constant-time to avoid leaking prefix
// matches. An empty configured key disables the check.
func (h *Handler) apiKeyMiddleware(c *gin.Context) {
	if h.apiKey == "" {
		c.Next()
		return
	}

	provided := c.GetHeader(apiKeyHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.apiKey)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "unauthorized",
		})
		return
	}

	c.Next()
}
