package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	grpcrouter "github.com/dtroode/currencyguard-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/currencyguard-server/internal/api/grpc/server"
	"github.com/dtroode/currencyguard-server/internal/api/http/middleware"
	httprouter "github.com/dtroode/currencyguard-server/internal/api/http/router"
	httpserver "github.com/dtroode/currencyguard-server/internal/api/http/server"
	"github.com/dtroode/currencyguard-server/internal/classifier"
	"github.com/dtroode/currencyguard-server/internal/config"
	"github.com/dtroode/currencyguard-server/internal/health"
	"github.com/dtroode/currencyguard-server/internal/logger"
	"github.com/dtroode/currencyguard-server/internal/metrics"
	"github.com/dtroode/currencyguard-server/internal/model"
	"github.com/dtroode/currencyguard-server/internal/password"
	"github.com/dtroode/currencyguard-server/internal/repository/postgres"
	"github.com/dtroode/currencyguard-server/internal/server"
	"github.com/dtroode/currencyguard-server/internal/service"
	storage "github.com/dtroode/currencyguard-server/internal/storage/minio"
	"github.com/dtroode/currencyguard-server/internal/telemetry"
	"github.com/dtroode/currencyguard-server/internal/token"
)

const serviceName = "currencyguard-server"

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	logAppVersion()

	shutdownTelemetry, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry, logger)
	if err != nil {
		logger.Fatal("failed to initialize telemetry", "error", err)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	storageClient, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	registry := metrics.NewRegistry()
	collector := metrics.NewCollector(registry)

	classifierClient, err := classifier.New(classifier.Config{
		URL:         cfg.Classifier.URL,
		AnalyzePath: cfg.Classifier.AnalyzePath,
		Field:       cfg.Classifier.Field,
		Timeout:     cfg.Classifier.Timeout,
		MaxRetries:  cfg.Classifier.MaxRetries,
	}, collector, logger)
	if err != nil {
		logger.Fatal("failed to initialize classifier client", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	scanRepo := postgres.NewScanRepository(db)

	tokenService := service.NewTokenService(token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL), logger)
	authService := service.NewAuth(userRepo, password.NewHasher(password.DefaultCost), tokenService, logger)
	ledgerService := service.NewLedger(scanRepo, userRepo, cfg.Scan.HistoryLimit, logger)
	scanService := service.NewScan(classifierClient, storageClient, ledgerService, cfg.Scan.UploadMaxBytes, collector, logger)

	checker := health.NewChecker(cfg.Health.Timeout, logger)
	checker.Register("database", db.Ping)
	checker.Register("storage", storageClient.Ping)
	checker.Register("classifier", classifierClient.Health)

	trustedProxies, err := cfg.HTTP.TrustedProxyPrefixes()
	if err != nil {
		logger.Fatal("failed to parse trusted proxies", "error", err)
	}

	httpRouter := httprouter.New(httprouter.Deps{
		AuthService:       authService,
		ScanService:       scanService,
		LedgerService:     ledgerService,
		TokenService:      tokenService,
		HealthChecker:     checker,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(registry),
		CORSAllowedOrigin: cfg.HTTP.CORSAllowedOrigin,
		RateLimit: middleware.RateLimiterConfig{
			PerMinute:      cfg.HTTP.RateLimitPerMinute,
			Burst:          cfg.HTTP.RateLimitBurst,
			TrustedProxies: trustedProxies,
		},
	}, logger)
	defer httpRouter.Stop()

	opsRouter := grpcrouter.New(logger)

	servers := []struct {
		server model.Server
		layer  model.SecurityLayer
	}{
		{
			server: httpserver.NewHTTPServer(httpRouter.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port)),
			layer:  server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName),
		},
		{
			server: grpcserver.NewGRPCServer(opsRouter.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port)),
			layer:  server.NewPlainListener(),
		},
	}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server", "name", s.Name(), "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("server stopped with error", "name", s.Name(), "error", err)
				stop()
			}
		}(s.server, s.layer)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		checker.Run(ctx, cfg.Health.Interval, opsRouter.UpdateStatus)
	}()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")
	opsRouter.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.server.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "name", s.server.Name(), "error", err, "address", s.server.Address())
		}
	}

	wg.Wait()

	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
