package router

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/currencyguard-server/internal/api/grpc/middleware"
	"github.com/dtroode/currencyguard-server/internal/health"
	"github.com/dtroode/currencyguard-server/internal/logger"
)

// ServiceName is the gRPC health service name reported alongside the overall ("") status.
const ServiceName = "currencyguard.Scanner"

// Router builds the ops gRPC server: the standard health service plus reflection.
type Router struct {
	healthServer *grpchealth.Server
	logger       *logger.Logger
}

// New creates a Router. Both statuses start as NOT_SERVING until the first report arrives.
//
// Parameters:
//   - logger: Logger used by the interceptors and status updates
//
// Returns a pointer to the newly created Router instance.
func New(logger *logger.Logger) *Router {
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Router{healthServer: hs, logger: logger}
}

// Register creates the gRPC server with logging and recovery interceptors.
func (r *Router) Register() *grpc.Server {
	interceptorLogger := middleware.InterceptorLogger(r.logger)
	loggingOpts := middleware.LoggingOptions()
	recoveryOpts := middleware.RecoveryOptions(r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.UnaryServerInterceptor(interceptorLogger, loggingOpts...),
			recovery.UnaryServerInterceptor(recoveryOpts...),
		),
		grpc.ChainStreamInterceptor(
			logging.StreamServerInterceptor(interceptorLogger, loggingOpts...),
			recovery.StreamServerInterceptor(recoveryOpts...),
		),
	)

	healthpb.RegisterHealthServer(s, r.healthServer)
	reflection.Register(s)

	return s
}

// UpdateStatus publishes a health report to gRPC health watchers.
// It is passed to health.Checker.Run as the update callback.
//
// Parameters:
//   - report: Latest dependency report; any unavailable check means NOT_SERVING
func (r *Router) UpdateStatus(report health.Report) {
	status := healthpb.HealthCheckResponse_SERVING
	if !report.Healthy() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		r.logger.Warn("gRPC ops: reporting not serving",
			"checks", report.Checks)
	}

	r.healthServer.SetServingStatus("", status)
	r.healthServer.SetServingStatus(ServiceName, status)
}

// Shutdown marks every service NOT_SERVING and ignores later updates.
func (r *Router) Shutdown() {
	r.healthServer.Shutdown()
}
