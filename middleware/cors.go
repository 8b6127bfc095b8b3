package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-backend/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsAllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsAllowHeaders = []string{"Content-Type"}
)

// CORSMiddleware answers cross-origin requests. With a wildcard (or empty)
// origin list every response carries Access-Control-Allow-Origin: *.
// Otherwise gin-contrib/cors echoes allowed origins and rejects other origins,
// except on preflight, which answers 200 without CORS headers.
func CORSMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	if len(cfg.AllowedOrigins) == 0 || containsOrigin(cfg.AllowedOrigins, "*") {
		methods := strings.Join(corsAllowMethods, ", ")
		headers := strings.Join(corsAllowHeaders, ", ")
		return func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Allow-Methods", methods)
			c.Next()
		}
	}

	restricted := cors.New(cors.Config{
		AllowOrigins:              cfg.AllowedOrigins,
		AllowMethods:              corsAllowMethods,
		AllowHeaders:              corsAllowHeaders,
		AllowWildcard:             true,
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	})
	origins := cfg.AllowedOrigins
	return func(c *gin.Context) {
		// OPTIONS always answers 200. A disallowed origin just gets no CORS
		// headers, so the browser still blocks the follow-up request.
		origin := c.GetHeader("Origin")
		if c.Request.Method == http.MethodOptions && origin != "" && !originAllowed(origins, origin) {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		restricted(c)
	}
}

// originAllowed matches origin against exact entries and entries with a single
// "*" wildcard, e.g. "https://*.example.com".
func originAllowed(allowed []string, origin string) bool {
	for _, pattern := range allowed {
		if pattern == origin {
			return true
		}
		prefix, suffix, ok := strings.Cut(pattern, "*")
		if ok && len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// AllowMethods narrows Access-Control-Allow-Methods to what one route accepts.
func AllowMethods(methods ...string) gin.HandlerFunc {
	value := strings.Join(methods, ", ")
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Methods", value)
		c.Next()
	}
}

// containsOrigin checks if a string is present in the allowed origins slice
func containsOrigin(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}
