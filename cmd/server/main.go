package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/atharavsawant52/NeoRide/internal/app"
	"github.com/atharavsawant52/NeoRide/internal/auth"
	"github.com/atharavsawant52/NeoRide/internal/config"
	"github.com/atharavsawant52/NeoRide/internal/handler"
	"github.com/atharavsawant52/NeoRide/internal/maps"
	"github.com/atharavsawant52/NeoRide/internal/realtime"
	internalRedis "github.com/atharavsawant52/NeoRide/internal/redis"
	"github.com/atharavsawant52/NeoRide/internal/repository/postgres"
	"github.com/atharavsawant52/NeoRide/internal/service"
	"github.com/atharavsawant52/NeoRide/internal/stream"
)

// server bundles what main has to start and drain.
type server struct {
	http      *http.Server
	hub       *realtime.Hub
	dispatch  *service.DispatchService
	publisher *stream.Publisher
}

func main() {
	// Load configuration.
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
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
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	if cfg.Database.MigrateOnStart {
		if err := app.RunMigrations(cfg.Database); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Initialize database with New Relic instrumentation.
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

	routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.Region)
	if err != nil {
		log.Fatalf("failed to create routing client: %v", err)
	}
	if !routes.Enabled() {
		log.Println("GOOGLE_MAPS_API not set: ride creation will fail until routing is configured")
	}

	// Wire dependencies.
	srv := wireServer(db, redisClient, nrApp, routes, cfg)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	go func() {
		if err := srv.hub.Run(relayCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("realtime relay stopped: %v", err)
		}
	}()

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s (instance %s)", cfg.Server.Port, cfg.Server.InstanceID)
		if err := srv.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	if err := srv.http.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	srv.hub.Close()
	srv.hub.Wait()
	srv.dispatch.Wait()
	stopRelay()

	if err := srv.publisher.Close(); err != nil {
		log.Printf("failed to close event stream: %v", err)
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the server parts.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	routes *maps.RouteService,
	cfg *config.Config,
) *server {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)
	sessionStore := internalRedis.NewSessionStore(redisClient)
	relay := internalRedis.NewRelay(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	eventRepo := postgres.NewPaymentEventRepository(db)
	tx := postgres.NewTransactor(db)

	publisher := stream.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	hub := realtime.NewHub(cfg.Server.InstanceID, sessionStore, relay, nrApp)

	// Initialize services.
	directory := service.NewDirectoryService(locationStore, cacheStore, sessionStore, driverRepo)
	dispatch := service.NewDispatchService(hub, sessionStore, directory, routes, publisher, cfg.Dispatch.RadiusKm)
	fare := service.NewFareEngine(cfg.Fare)
	rideService := service.NewRideService(rideRepo, eventRepo, driverRepo, tx, fare, routes, dispatch, cfg.Payment.Currency)
	driverService := service.NewDriverService(locationStore, cacheStore, driverRepo)
	paymentService := service.NewPaymentService(rideRepo, eventRepo, tx, service.NewLocalOrderProvider(), dispatch, service.PaymentConfig{
		KeySecret:     cfg.Payment.KeySecret,
		WebhookSecret: cfg.Payment.WebhookSecret,
		Currency:      cfg.Payment.Currency,
	})

	hub.SetHandler(realtime.NewEventRouter(driverService, paymentService))

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:    handler.NewUserHandler(userRepo),
		RideHandler:    handler.NewRideHandler(rideService),
		DriverHandler:  handler.NewDriverHandler(driverService),
		PaymentHandler: handler.NewPaymentHandler(paymentService, cfg.Payment.KeyID),
		Realtime:       hub.ServeWS,
		Verifier:       auth.NewVerifier(cfg.Auth.JWTSecret),
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &server{
		http: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		hub:       hub,
		dispatch:  dispatch,
		publisher: publisher,
	}
}
