package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/track-asia/service-navigation/internal/application"
	"github.com/track-asia/service-navigation/internal/config"
	"github.com/track-asia/service-navigation/internal/directions"
	"github.com/track-asia/service-navigation/internal/events"
	"github.com/track-asia/service-navigation/internal/handler"
	"github.com/track-asia/service-navigation/internal/logger"
	"github.com/track-asia/service-navigation/internal/middleware"
	"github.com/track-asia/service-navigation/internal/repository"
	"github.com/track-asia/service-navigation/internal/simulation"
	"github.com/track-asia/service-navigation/internal/store"
)

const serviceName = "service-navigation"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.Server.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Server.Port),
		zap.String("directions", cfg.Directions.BaseURL),
		zap.Bool("kafka", cfg.Kafka.Enabled),
		zap.Bool("database", cfg.Database.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Directions client
	directionsClient, err := directions.NewClient(directions.Config{
		BaseURL:     cfg.Directions.BaseURL,
		AccessToken: cfg.Directions.AccessToken,
		TokenParam:  cfg.Directions.TokenParam,
		Geometries:  cfg.Directions.Geometries,
		UserAgent:   cfg.Directions.UserAgent,
		Timeout:     cfg.Directions.Timeout,
	}, log.Named("directions"))
	if err != nil {
		log.Fatal("failed to create directions client", zap.Error(err))
	}

	// Event emitter and its sinks
	emitter := events.NewEmitter(cfg.Events.BufferSize, log.Named("events"))

	hub := events.NewHub(log.Named("hub"), nil)
	defer hub.Close()
	emitter.Register("websocket", hub)

	var producer *events.Producer
	if cfg.Kafka.Enabled {
		producer = events.NewProducer(cfg.Kafka.Brokers, log.Named("kafka"))
		defer func() { _ = producer.Close() }()
		emitter.Register("kafka", events.NewKafkaSink(producer, cfg.Kafka.EventsTopic))
	}

	// Trip history
	var (
		tripService *application.TripService
		dbPinger    handler.Pinger
	)
	if cfg.Database.Enabled {
		db, err := repository.Connect(cfg.Database.Postgres, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to get sql.DB", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()
		dbPinger = sqlDB

		tripRepo := repository.NewGormTripRepository(db)
		emitter.Register("trips", application.NewTripRecorder(tripRepo, log.Named("trips")))
		tripService = application.NewTripService(tripRepo, log)
	}

	// Drain queued events before the sinks above are closed.
	defer emitter.Close()

	// Navigation session
	session := application.NewNavigationSession(directionsClient, store.NewRouteStore(), emitter, log.Named("session"))
	defer session.Close()
	dispatcher := handler.NewRequestDispatcher(session, log.Named("dispatcher"))

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	handler.NewHealthHandler(serviceName, dbPinger).RegisterRoutes(router)

	var authMW []gin.HandlerFunc
	if cfg.Auth.JWTSecret != "" {
		jwtManager := middleware.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		authMW = append(authMW, middleware.AuthMiddleware(jwtManager))
	} else {
		log.Warn("no JWT secret configured, navigation API is unauthenticated")
	}

	handler.NewNavigationHandler(dispatcher, hub).RegisterRoutes(&router.RouterGroup, authMW...)
	if tripService != nil {
		handler.NewTripHandler(tripService).RegisterRoutes(&router.RouterGroup, authMW...)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down " + serviceName + "...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server forced shutdown", zap.Error(err))
		}
		return nil
	})

	// Kafka command bridge
	if cfg.Kafka.Enabled {
		commands := events.NewCommandConsumer(
			events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.CommandsTopic, log.Named("kafka")),
			func(ctx context.Context, command string, args map[string]any) any {
				return dispatcher.Handle(ctx, command, args)
			},
			producer,
			cfg.Kafka.RepliesTopic,
			log.Named("commands"),
		)
		defer func() { _ = commands.Close() }()

		g.Go(func() error {
			log.Info("starting navigation command consumer", zap.String("topic", cfg.Kafka.CommandsTopic))
			if err := commands.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("command consumer: %w", err)
			}
			return nil
		})
	}

	if cfg.Simulation.Enabled {
		sim := simulation.NewSimulator(session, cfg.Simulation.Interval, cfg.Simulation.Speed, log.Named("simulation"))
		g.Go(func() error { return sim.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Error(serviceName+" exited with error", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
