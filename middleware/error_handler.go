package middleware

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/NomadCrew/feedback-backend/errors"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error as the JSON error
// body. 4xx errors are logged at warn level, everything else through
// logger.LogHTTPError.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		err := last.Err

		var appError *apperrors.AppError
		if errors.As(err, &appError) {
			statusCode := appError.GetHTTPStatus()
			if statusCode >= http.StatusInternalServerError {
				logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))
			} else {
				logger.GetLogger().Warnw("Request rejected",
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"status", statusCode,
					"type", appError.Type,
					"error", appError.Message,
					"request_id", c.GetString(RequestIDKey))
			}
			c.JSON(statusCode, appError)
			return
		}

		if last.Type == gin.ErrorTypeBind || last.Type == gin.ErrorTypePublic {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			c.JSON(http.StatusBadRequest, apperrors.ValidationFailed(apperrors.ErrorTypeBadPayload, "Invalid JSON in request body"))
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
		c.JSON(http.StatusInternalServerError, apperrors.InternalServerError(err.Error(), err))
	}
}
