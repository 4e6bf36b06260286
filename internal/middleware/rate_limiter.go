package middleware

import (
	"fmt"
	"net/http"
	"time"

	"educate/internal/cache"
	"educate/internal/response"
	"educate/internal/services"

	"go.uber.org/zap"
)

// RateLimitConfig controls the fixed-window limiter.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	KeyName  string
}

// DefaultRateLimit covers general API traffic.
func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{Requests: 300, Window: time.Minute, KeyName: "api"}
}

// AuthRateLimit is tighter for credential endpoints.
func AuthRateLimit() RateLimitConfig {
	return RateLimitConfig{Requests: 10, Window: time.Minute, KeyName: "auth"}
}

// RateLimit counts requests per client per fixed window against the shared
// cache, so limits hold across instances when Redis backs it.
func RateLimit(cacheClient cache.Cache, cfg RateLimitConfig, builder *response.Builder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The limiter sits ahead of authentication in the chain, so the
			// client address is the only identity available here.
			key := fmt.Sprintf("ratelimit:%s:ip:%s", cfg.KeyName, clientIP(r))

			count, err := cacheClient.Increment(r.Context(), key, 1, cfg.Window)
			if err != nil {
				// Fail open; the limiter must not take the API down.
				logger.Warn("Rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(cfg.Requests) {
				builder.WriteError(w, r, services.NewRateLimitError(
					"Too many requests, slow down",
					map[string]interface{}{
						"limit":  cfg.Requests,
						"window": cfg.Window.String(),
					},
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
