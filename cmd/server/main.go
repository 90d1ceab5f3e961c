package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rideshare/internal/app"
	"rideshare/internal/config"
	"rideshare/internal/handler"
	"rideshare/internal/identity"
	internalRedis "rideshare/internal/redis"
	"rideshare/internal/repository/postgres"
	"rideshare/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation. Migrations run here.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, worker := wireServer(db, redisClient, nrApp, cfg)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(workerCtx)
	}()

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	stopWorker()
	<-workerDone

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the compensation worker.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.CompensationWorker) {
	// Initialize Redis stores.
	rideStore := internalRedis.NewRideStore(redisClient, cfg.Store.MaxTxRetries)
	pointsStore := internalRedis.NewPointsStore(redisClient, cfg.Store.MaxTxRetries)
	notificationStore := internalRedis.NewNotificationStore(redisClient, internalRedis.DefaultNotificationHistory)

	// Initialize repositories.
	accountRepo := postgres.NewAccountRepository(db)
	adjustmentRepo := postgres.NewAdjustmentRepository(db)

	// Initialize identity.
	tokens := identity.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	identityProvider := identity.NewContextProvider()

	// Initialize services.
	ledgerService := service.NewLedgerService(pointsStore, adjustmentRepo, cfg.Worker.MaxAttempts)
	notificationService := service.NewNotificationService(notificationStore)
	rideService := service.NewRideService(rideStore, ledgerService, identityProvider, notificationService, cfg.Store.OpTimeout)
	accountService := service.NewAccountService(accountRepo, tokens, cfg.Auth.BcryptCost)
	worker := service.NewCompensationWorker(ledgerService, cfg.Worker.CompensationInterval, cfg.Worker.CompensationBatch)

	// Initialize handlers.
	rideHandler := handler.NewRideHandler(rideService)
	pointsHandler := handler.NewPointsHandler(rideService)
	notificationHandler := handler.NewNotificationHandler(rideService)
	authHandler := handler.NewAuthHandler(accountService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:         rideHandler,
		PointsHandler:       pointsHandler,
		NotificationHandler: notificationHandler,
		AuthHandler:         authHandler,
		Tokens:              tokens,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
		AllowedOrigins:      cfg.Server.AllowedOrigins,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, worker
}
