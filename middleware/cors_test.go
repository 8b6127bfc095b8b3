package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/feedback-backend/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupCORSRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(&config.ServerConfig{AllowedOrigins: origins}))
	r.GET("/feedback", AllowMethods("GET", "POST", "OPTIONS"), func(c *gin.Context) {
		c.JSON(http.StatusOK, []string{})
	})
	r.OPTIONS("/feedback", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		origins        []string
		method         string
		origin         string
		expectedStatus int
		expectedOrigin string
		expectedMethod string
	}{
		{
			name:           "wildcard without origin header",
			origins:        []string{"*"},
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedOrigin: "*",
			expectedMethod: "GET, POST, OPTIONS",
		},
		{
			name:           "wildcard with origin header",
			origins:        []string{"*"},
			method:         http.MethodGet,
			origin:         "https://anywhere.example.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "*",
			expectedMethod: "GET, POST, OPTIONS",
		},
		{
			name:           "empty origin list behaves like wildcard",
			origins:        nil,
			method:         http.MethodOptions,
			origin:         "https://anywhere.example.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "*",
			expectedMethod: "GET, POST, DELETE, OPTIONS",
		},
		{
			name:           "restricted list echoes allowed origin",
			origins:        []string{"https://app.example.com"},
			method:         http.MethodGet,
			origin:         "https://app.example.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://app.example.com",
		},
		{
			name:           "restricted list preflight answers 200",
			origins:        []string{"https://app.example.com"},
			method:         http.MethodOptions,
			origin:         "https://app.example.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://app.example.com",
		},
		{
			name:           "restricted list preflight from unknown origin answers 200 without grant",
			origins:        []string{"https://app.example.com"},
			method:         http.MethodOptions,
			origin:         "https://evil.example.com",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "restricted list wildcard entry",
			origins:        []string{"https://*.example.com"},
			method:         http.MethodOptions,
			origin:         "https://admin.example.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://admin.example.com",
		},
		{
			name:           "restricted list rejects unknown origin",
			origins:        []string{"https://app.example.com"},
			method:         http.MethodGet,
			origin:         "https://evil.example.com",
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupCORSRouter(tt.origins)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/feedback", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.expectedMethod != "" {
				assert.Equal(t, tt.expectedMethod, w.Header().Get("Access-Control-Allow-Methods"))
			}
			if tt.expectedOrigin == "*" {
				assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
			}
			if tt.method == http.MethodOptions {
				assert.Empty(t, w.Body.String())
			}
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://app.example.com", "https://*.feedback.dev"}

	assert.True(t, originAllowed(allowed, "https://app.example.com"))
	assert.True(t, originAllowed(allowed, "https://eu.feedback.dev"))
	assert.False(t, originAllowed(allowed, "https://feedback.dev"))
	assert.False(t, originAllowed(allowed, "https://app.example.com.evil.io"))
	assert.False(t, originAllowed(allowed, "http://app.example.com"))
	assert.False(t, originAllowed(nil, "https://app.example.com"))
}

func TestJSONContentType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JSONContentType())
	r.OPTIONS("/feedback", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/feedback", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
		assert.Len(t, w.Body.String(), 36)
		assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	})

	t.Run("reuses the proxy id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Body.String())
	})
}
