package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/transfers/api"
	"github.com/Domenick1991/transfers/config"
	"github.com/Domenick1991/transfers/internal/auth"
	"github.com/Domenick1991/transfers/internal/bootstrap"
	"github.com/Domenick1991/transfers/internal/cache"
	"github.com/Domenick1991/transfers/internal/kafka"
	"github.com/Domenick1991/transfers/internal/logging"
	"github.com/Domenick1991/transfers/internal/rabbitmq"
	"github.com/Domenick1991/transfers/internal/repository"
	"github.com/Domenick1991/transfers/internal/service/booking"
	"github.com/Domenick1991/transfers/internal/service/routes"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	location, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Routes.CacheTTL())
	defer redisCache.Close()

	producer, closeProducer, err := newProducer(cfg, logger)
	if err != nil {
		log.Fatalf("connect broker: %v", err)
	}
	defer closeProducer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	routeRepo := repository.NewRouteRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)

	routeService := routes.NewRouteService(routeRepo, redisCache, logger)
	bookingService := booking.NewBookingService(
		bookingRepo,
		routeRepo,
		resourceRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithBuffer(cfg.Scheduling.Buffer()),
		booking.WithAssignmentLockTTL(cfg.Scheduling.AssignmentLockTTL()),
		booking.WithLocation(location),
		booking.WithLogger(logger),
	)

	router := api.NewRouter(api.RouterDeps{
		Bookings:       bookingService,
		Routes:         routeService,
		Guard:          auth.NewAuthorizer(cfg.Auth),
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	probes := map[string]bootstrap.Probe{
		"postgres": pool.Ping,
		"redis":    redisCache.Ping,
	}
	if p, ok := producer.(*kafka.Producer); ok {
		probes["kafka"] = p.CheckConnection
	}

	if err := bootstrap.Run(ctx, cfg, router, probes, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newProducer(cfg *config.Config, logger *slog.Logger) (booking.Producer, io.Closer, error) {
	if cfg.Notifications.Transport == config.TransportRabbitMQ {
		broker, err := rabbitmq.New(cfg.RabbitMQ, logger)
		if err != nil {
			return nil, nil, err
		}
		return broker, broker, nil
	}
	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	return producer, producer, nil
}
