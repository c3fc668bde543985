package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(rps float64, burst int) *gin.Engine {
	router := gin.New()
	router.Use(LoginRateLimitMiddleware(rps, burst, createTestLogger()))
	router.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestLoginRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	router := rateLimitedRouter(10.0, 20)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestLoginRateLimitMiddleware_BlocksRequestsExceedingBurst(t *testing.T) {
	router := rateLimitedRouter(1.0, 2)

	// Burst capacity allows the first two requests
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestLoginRateLimitMiddleware_IndependentLimitsPerIP(t *testing.T) {
	router := rateLimitedRouter(1.0, 1)

	// IP 1 consumes its limit
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.168.1.100:12345"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// IP 1 is now rate limited regardless of source port
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.168.1.100:12346"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// IP 2 still has its own independent limit
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.168.1.101:12345"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRateLimitMiddleware_HandlesXForwardedFor(t *testing.T) {
	router := rateLimitedRouter(1.0, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.2")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRateLimiterStore_CleanupStaleEntries(t *testing.T) {
	store := &loginRateLimiterStore{
		rps:   10.0,
		burst: 20,
	}

	ip := "192.168.1.100"
	limiter := store.getLimiter(ip)
	assert.NotNil(t, limiter)

	_, ok := store.limiters.Load(ip)
	assert.True(t, ok)

	// Age the entry past the cleanup threshold
	if val, ok := store.limiters.Load(ip); ok {
		entry := val.(*loginRateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now().Add(-2 * time.Hour)
		entry.mu.Unlock()
	}

	threshold := time.Now().Add(-1 * time.Hour)
	store.limiters.Range(func(key, value interface{}) bool {
		entry := value.(*loginRateLimiterEntry)
		entry.mu.Lock()
		shouldDelete := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if shouldDelete {
			store.limiters.Delete(key)
		}
		return true
	})

	_, ok = store.limiters.Load(ip)
	assert.False(t, ok)
}
