package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baechuer/cityevents/services/booking-service/internal/config"
	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/baechuer/cityevents/services/booking-service/internal/identity"
	"github.com/baechuer/cityevents/services/booking-service/internal/infrastructure/blob"
	"github.com/baechuer/cityevents/services/booking-service/internal/infrastructure/memory"
	"github.com/baechuer/cityevents/services/booking-service/internal/infrastructure/postgres"
	"github.com/baechuer/cityevents/services/booking-service/internal/infrastructure/rabbitmq"
	"github.com/baechuer/cityevents/services/booking-service/internal/infrastructure/redis"
	"github.com/baechuer/cityevents/services/booking-service/internal/logger"
	"github.com/baechuer/cityevents/services/booking-service/internal/service"
	"github.com/baechuer/cityevents/services/booking-service/internal/transport/rest"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}

	logger.Init()
	log := logger.Logger.With().
		Str("service", "booking-service").
		Str("env", cfg.AppEnv).
		Logger()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Storage: Postgres, or in-memory when no DSN in dev ----
	var (
		users    domain.UserRepository
		events   domain.EventRepository
		bookings domain.BookingRepository
	)
	if cfg.DBDSN != "" {
		dbPool, err := pgxpool.New(rootCtx, cfg.DBDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres pool create failed")
		}
		defer dbPool.Close()

		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		if err := dbPool.Ping(pingCtx); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("postgres ping failed")
		}
		cancel()
		log.Info().Msg("postgres connected")

		users = postgres.NewUserRepo(dbPool)
		events = postgres.NewEventRepo(dbPool)
		bookings = postgres.NewBookingRepo(dbPool)
	} else {
		log.Warn().Msg("no database configured, using in-memory storage")
		users = memory.NewUserRepo()
		events = memory.NewEventRepo()
		bookings = memory.NewBookingRepo()
	}

	// ---- Redis (best-effort; the services degrade without it) ----
	var cache domain.Cache
	rc := redis.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		err := rc.Client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("redis ping failed, running without cache")
		} else {
			log.Info().Msg("redis connected")
			cache = rc
		}
	}

	// ---- RabbitMQ ----
	var pub domain.Publisher = rabbitmq.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq connect failed, events will not be published")
		} else {
			defer p.Close()
			log.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbitmq connected")
			pub = p
		}
	}

	// ---- Blob store for event images ----
	var images rest.ImageStore
	if cfg.S3Endpoint != "" {
		store, err := blob.NewStore(cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("blob store init failed, image uploads disabled")
		} else {
			bucketCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
			if err := store.EnsureBucket(bucketCtx); err != nil {
				log.Warn().Err(err).Msg("bucket check failed")
			}
			cancel()
			images = store
		}
	}

	// ---- Identity + application services ----
	clock := service.SystemClock{}
	verifier := identity.NewHS256Verifier(cfg.JWTSecret)
	resolver := identity.NewResolver(verifier, users, clock, cfg.JWTIssuer)

	catalog := service.NewCatalogService(events, cache, pub, clock, cfg.CacheDetailsTTL, cfg.CacheListTTL)
	bookingSvc := service.NewBookingService(bookings, events, pub, clock)

	h := rest.NewHandler(catalog, bookingSvc, images)

	httpHandler := rest.NewRouter(rest.RouterDeps{
		Handler:   h,
		Resolver:  resolver,
		Cache:     cache,
		RLEnabled: cfg.RLEnabled,
		RLLimit:   cfg.RLLimit,
		RLWindow:  cfg.RLWindow,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
