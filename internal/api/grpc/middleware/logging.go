package middleware

import (
	"context"
	"log/slog"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"

	"github.com/dtroode/currencyguard-server/internal/logger"
)

// InterceptorLogger adapts logger to the go-grpc-middleware logging interceptors.
func InterceptorLogger(l *logger.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), "gRPC ops: "+msg, fields...)
	})
}

// LoggingOptions logs finished calls only; health probes are too frequent for start events.
func LoggingOptions() []logging.Option {
	return []logging.Option{
		logging.WithLogOnEvents(logging.FinishCall),
	}
}
