package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"educate/internal/contextutils"

	"go.uber.org/zap"
)

// slowRequestThreshold marks requests worth a warning.
const slowRequestThreshold = time.Second

// statusWriter captures the status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// StructuredLogging logs one line per request with timing and status.
func StructuredLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("request_id", contextutils.GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Int("bytes", sw.bytes),
				zap.Duration("duration", duration),
				zap.String("remote_addr", clientIP(r)),
			}

			switch {
			case sw.status >= http.StatusInternalServerError:
				logger.Error("Request completed", fields...)
			case duration > slowRequestThreshold:
				logger.Warn("Slow request", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
		})
	}
}

// clientIP resolves the caller address behind common proxy headers.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
