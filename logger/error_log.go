package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestIDKey mirrors middleware.RequestIDKey; importing middleware here would cycle.
const requestIDKey = "request_id"

// LogHTTPError logs a failed request with its status, route and request id.
// Server errors outside production also carry a stack.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	fields := requestFields(c)
	fields = append(fields,
		zap.Int("status_code", statusCode),
		zap.String("error_type", errorType(err)),
		zap.Error(err),
	)
	if statusCode >= 500 && os.Getenv("ENVIRONMENT") != "production" {
		fields = append(fields, zap.Stack("stack"))
	}

	GetLogger().Desugar().WithOptions(zap.AddCallerSkip(1)).Error(message, fields...)
}

func requestFields(c *gin.Context) []zap.Field {
	if c == nil || c.Request == nil {
		return nil
	}
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
	}
	if route := c.FullPath(); route != "" {
		fields = append(fields, zap.String("route", route))
	}
	if id := c.GetString(requestIDKey); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if ua := c.Request.UserAgent(); ua != "" {
		fields = append(fields, zap.String("user_agent", ua))
	}
	return fields
}

// errorType returns the unqualified dynamic type of err, e.g. "AppError".
func errorType(err error) string {
	if err == nil {
		return ""
	}
	name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[idx+1:]
	}
	return name
}
