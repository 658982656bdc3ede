package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	obsmiddleware "github.com/smallbiznis/spendlens/internal/observability/logger"
)

// CORS allows the configured dashboard origin with credentials. An origin of
// "*" reflects any caller.
func CORS(allowedOrigin string) gin.HandlerFunc {
	allowed := strings.TrimRight(strings.TrimSpace(allowedOrigin), "/")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed == "*" || strings.EqualFold(origin, allowed)) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+obsmiddleware.RequestIDHeader)
			c.Header("Access-Control-Expose-Headers", obsmiddleware.RequestIDHeader+", Content-Disposition, Retry-After")
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
