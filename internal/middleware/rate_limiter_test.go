package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"educate/internal/cache"
	"educate/internal/config"
	"educate/internal/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRateLimiter(t *testing.T, cfg RateLimitConfig) http.Handler {
	t.Helper()

	cacheClient, err := cache.New(&config.CacheConfig{Provider: "memory"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { cacheClient.Close() })

	limited := RateLimit(cacheClient, cfg, response.NewBuilder(zap.NewNop()), zap.NewNop())
	return limited(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func limitedRequest(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/resources", nil)
	req.Header.Set("X-Forwarded-For", ip)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	t.Run("rejects once the window limit is spent", func(t *testing.T) {
		handler := newTestRateLimiter(t, RateLimitConfig{Requests: 2, Window: time.Minute, KeyName: "api"})

		assert.Equal(t, http.StatusNoContent, limitedRequest(handler, "10.0.0.1").Code)
		assert.Equal(t, http.StatusNoContent, limitedRequest(handler, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, limitedRequest(handler, "10.0.0.1").Code)
	})

	t.Run("counts each client address separately", func(t *testing.T) {
		handler := newTestRateLimiter(t, RateLimitConfig{Requests: 1, Window: time.Minute, KeyName: "api"})

		assert.Equal(t, http.StatusNoContent, limitedRequest(handler, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, limitedRequest(handler, "10.0.0.1").Code)
		assert.Equal(t, http.StatusNoContent, limitedRequest(handler, "10.0.0.2").Code)
	})
}
