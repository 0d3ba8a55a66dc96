package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func rateLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/save", rl.Middleware(func(c *gin.Context) string {
		return c.GetHeader("X-User-Id")
	}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	r := rateLimitedRouter(NewRateLimiter(rate.Limit(1), 3))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/save", nil)
		req.Header.Set("X-User-Id", "user-1")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	r := rateLimitedRouter(NewRateLimiter(rate.Limit(0.1), 1))

	first := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/save", nil)
	req.Header.Set("X-User-Id", "user-1")
	r.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req2, _ := http.NewRequest(http.MethodPost, "/save", nil)
	req2.Header.Set("X-User-Id", "user-1")
	r.ServeHTTP(second, req2)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRateLimiterIsolatesUsers(t *testing.T) {
	r := rateLimitedRouter(NewRateLimiter(rate.Limit(0.1), 1))

	for _, user := range []string{"user-1", "user-2"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/save", nil)
		req.Header.Set("X-User-Id", user)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, user)
	}
}
