package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/currencyguard-server/internal/logger"
)

// RequestContextManager tracks the user resolved for a request.
type RequestContextManager interface {
	WithRequestState(ctx context.Context) context.Context
	GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool)
}

// RequestMetrics records per-request metrics.
type RequestMetrics interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// Flush lets streamed image downloads pass through the recorder.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// NewLogging logs method, path, status, duration and user ID of every request,
// choosing the level by status class, and records request metrics when metrics is not nil.
func NewLogging(logger *logger.Logger, contextManager RequestContextManager, metrics RequestMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			ctx := contextManager.WithRequestState(r.Context())

			next.ServeHTTP(rec, r.WithContext(ctx))

			duration := time.Since(start)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.statusCode,
				"duration_ms", float64(duration.Nanoseconds()) / float64(time.Millisecond),
			}
			if userID, ok := contextManager.GetUserIDFromContext(ctx); ok {
				args = append(args, "user_id", userID.String())
			}

			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(ctx, level, "HTTP request", args...)

			if metrics != nil {
				metrics.RecordHTTPRequest(r.Method, routePattern(r), rec.statusCode, duration)
			}
		})
	}
}

// routePattern returns the matched chi pattern so metric labels stay bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
