package middleware

import (
	"fmt"
	"net/http"
	"time"

	"educate/internal/contextutils"

	"github.com/gofrs/uuid"
)

// HeaderXRequestID is the correlation ID header.
const HeaderXRequestID = "X-Request-ID"

// RequestID assigns every request a correlation ID, honoring one supplied by
// an upstream proxy.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderXRequestID)
			if requestID == "" {
				if id, err := uuid.NewV4(); err == nil {
					requestID = id.String()
				} else {
					requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
				}
			}

			w.Header().Set(HeaderXRequestID, requestID)
			ctx := contextutils.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
