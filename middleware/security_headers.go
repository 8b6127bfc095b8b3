package middleware

import (
	"github.com/NomadCrew/feedback-backend/config"
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware sets response headers that keep browsers from
// sniffing, framing or caching feedback payloads. HSTS is only sent in production.
func SecurityHeadersMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	production := cfg != nil && cfg.Environment == config.EnvProduction

	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		// Listings contain submitter emails.
		c.Header("Cache-Control", "no-store")

		if production {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
