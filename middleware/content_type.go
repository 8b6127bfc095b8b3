package middleware

import "github.com/gin-gonic/gin"

// JSONContentType sets Content-Type: application/json on every response,
// including empty preflight answers.
func JSONContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.Next()
	}
}
