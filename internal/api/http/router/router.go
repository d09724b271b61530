package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpctx "github.com/dtroode/currencyguard-server/internal/api/http/context"
	"github.com/dtroode/currencyguard-server/internal/api/http/handler"
	"github.com/dtroode/currencyguard-server/internal/api/http/middleware"
	"github.com/dtroode/currencyguard-server/internal/apierror"
	"github.com/dtroode/currencyguard-server/internal/logger"
)

// apiPrefix is where the browser UI expects the routes.
const apiPrefix = "/api"

// Deps holds everything the router wires into handlers and middleware.
type Deps struct {
	AuthService   handler.AuthService
	ScanService   handler.ScanService
	LedgerService handler.LedgerService
	TokenService  middleware.TokenService
	HealthChecker handler.HealthChecker
	Metrics       middleware.RequestMetrics
	// MetricsHandler serves /metrics. The route is omitted when nil.
	MetricsHandler http.Handler

	CORSAllowedOrigin string
	RateLimit         middleware.RateLimiterConfig
}

// Router builds the public HTTP API.
type Router struct {
	deps           Deps
	contextManager *httpctx.Manager
	rateLimiter    *middleware.RateLimiter
	logger         *logger.Logger
}

// New creates a Router. Stop must be called to release the rate limiter.
func New(deps Deps, logger *logger.Logger) *Router {
	contextManager := httpctx.NewManager()
	return &Router{
		deps:           deps,
		contextManager: contextManager,
		rateLimiter:    middleware.NewRateLimiter(deps.RateLimit, contextManager, logger),
		logger:         logger,
	}
}

// Register returns the handler serving every route, traced with OpenTelemetry.
//
// Middleware order: Recovery, Logging, SecurityHeaders, CORS, then per group
// RateLimit for public routes or Authenticate followed by RateLimit for the rest.
func (r *Router) Register() http.Handler {
	mux := chi.NewRouter()

	mux.Use(chimiddleware.RequestID)
	mux.Use(middleware.NewRecovery(r.logger))
	mux.Use(middleware.NewLogging(r.logger, r.contextManager, r.deps.Metrics))
	mux.Use(middleware.NewSecurityHeaders())
	mux.Use(middleware.NewCORS(r.deps.CORSAllowedOrigin))

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteErrorResponse(w, &apierror.APIError{
			Code:       apierror.CodeNotFound,
			Message:    "route not found",
			HTTPStatus: http.StatusNotFound,
		})
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteErrorResponse(w, &apierror.APIError{
			Code:       "method_not_allowed",
			Message:    "method not allowed",
			HTTPStatus: http.StatusMethodNotAllowed,
		})
	})

	if r.deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", r.deps.MetricsHandler)
	}

	mux.Group(r.registerRoutes)
	mux.Route(apiPrefix, r.registerRoutes)

	return otelhttp.NewHandler(mux, "currencyguard-api",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}

// Stop releases background resources.
func (r *Router) Stop() {
	r.rateLimiter.Stop()
}

func (r *Router) registerRoutes(mux chi.Router) {
	authHandler := handler.NewAuth(r.deps.AuthService, r.logger)
	scanHandler := handler.NewScan(r.deps.ScanService, r.deps.LedgerService, r.contextManager, r.logger)
	healthHandler := handler.NewHealth(r.deps.HealthChecker)
	authenticate := middleware.NewAuthenticate(r.deps.TokenService, r.contextManager, r.logger)

	mux.Get("/health", healthHandler.Check)

	mux.Group(func(mux chi.Router) {
		mux.Use(r.rateLimiter.Middleware)

		mux.Post("/auth/register", authHandler.Register)
		mux.Post("/auth/login", authHandler.Login)
	})

	mux.Group(func(mux chi.Router) {
		mux.Use(authenticate.Handle)
		mux.Use(r.rateLimiter.Middleware)

		mux.Post("/scan", scanHandler.Submit)
		mux.Get("/history", scanHandler.History)
		mux.Get("/stats", scanHandler.Stats)
		mux.Get("/scans/{id}", scanHandler.Get)
		mux.Get("/scans/{id}/image", scanHandler.Image)
	})
}
