package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wanderly/agency-api/internal/config"
	"github.com/wanderly/agency-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func rateLimitConfig(perMinute int) *config.RateLimitConfig {
	return &config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     perMinute,
		RequestsPerMinuteAuth: perMinute * 2,
		WhitelistIPs:          []string{"10.0.0.99"},
		WhitelistPaths:        []string{"/health", "/swagger/*"},
	}
}

func TestRateLimiter_LimitByIP(t *testing.T) {
	rl := middleware.NewRateLimiter(rateLimitConfig(2), zap.NewNop())
	handler := rl.LimitByIP(okHandler())

	doRequest := func(path, remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allows requests under the limit", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, doRequest("/api/v1/quotes", "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, doRequest("/api/v1/quotes", "10.0.0.1:1234").Code)
	})

	t.Run("rejects requests over the limit", func(t *testing.T) {
		rec := doRequest("/api/v1/quotes", "10.0.0.1:1234")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("other clients are unaffected", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, doRequest("/api/v1/quotes", "10.0.0.2:1234").Code)
	})

	t.Run("whitelisted paths bypass the limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, doRequest("/health", "10.0.0.1:1234").Code)
		}
	})

	t.Run("wildcard path whitelist", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, doRequest("/swagger/index.html", "10.0.0.1:1234").Code)
		}
	})

	t.Run("whitelisted IPs bypass the limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, doRequest("/api/v1/quotes", "10.0.0.99:1234").Code)
		}
	})
}

func TestRateLimiter_Disabled(t *testing.T) {
	cfg := rateLimitConfig(1)
	cfg.Enabled = false
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())
	handler := rl.LimitByIP(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
