package middleware

import (
	"net/http"
	"runtime/debug"

	"educate/internal/contextutils"
	"educate/internal/response"
	"educate/internal/services"

	"go.uber.org/zap"
)

// Recovery converts panics into 500 responses instead of dropped connections.
func Recovery(logger *zap.Logger, builder *response.Builder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.String("request_id", contextutils.GetRequestID(r.Context())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.ByteString("stack", debug.Stack()),
					)
					builder.WriteError(w, r, services.NewInternalError("Internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
