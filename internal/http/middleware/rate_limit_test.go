package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(1, 2, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "other clients keep their own bucket")
}

func TestRateLimiter_ForgetsIdleVisitors(t *testing.T) {
	l := &rateLimiter{visitors: map[string]*visitor{}, limit: 1, burst: 1, ttl: time.Minute}
	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	l.lastSweep = start

	assert.True(t, l.allow("a", start))
	assert.False(t, l.allow("a", start))

	later := start.Add(2 * time.Minute)
	assert.True(t, l.allow("b", later))
	_, stillTracked := l.visitors["a"]
	assert.False(t, stillTracked)
}
