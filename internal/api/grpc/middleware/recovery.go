package middleware

import (
	"runtime/debug"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/currencyguard-server/internal/logger"
)

// RecoveryOptions turns handler panics into codes.Internal and logs the stack.
func RecoveryOptions(l *logger.Logger) []recovery.Option {
	return []recovery.Option{
		recovery.WithRecoveryHandler(func(p any) error {
			l.Error("gRPC ops: panic recovered",
				"panic", p,
				"stack", string(debug.Stack()))
			return status.Error(codes.Internal, "internal server error")
		}),
	}
}
