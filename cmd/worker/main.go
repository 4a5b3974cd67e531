package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/transfers/config"
	"github.com/Domenick1991/transfers/internal/cache"
	"github.com/Domenick1991/transfers/internal/email"
	"github.com/Domenick1991/transfers/internal/kafka"
	"github.com/Domenick1991/transfers/internal/logging"
	"github.com/Domenick1991/transfers/internal/notify"
	"github.com/Domenick1991/transfers/internal/rabbitmq"
	"github.com/Domenick1991/transfers/internal/repository"
	"github.com/Domenick1991/transfers/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
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

	resourceRepo := repository.NewResourceRepository(pool)
	handler := notify.NewHandler(email.NewSender(logger, cfg.Notifications.EmailFrom), resourceRepo, logger)

	var (
		producer booking.Producer
		consume  func(ctx context.Context) error
	)
	switch cfg.Notifications.Transport {
	case config.TransportRabbitMQ:
		broker, err := rabbitmq.New(cfg.RabbitMQ, logger)
		if err != nil {
			log.Fatalf("connect rabbitmq: %v", err)
		}
		defer broker.Close()
		producer = broker
		consume = func(ctx context.Context) error {
			return broker.Consume(ctx, cfg.Kafka.NotificationsTopic, handler.Handle)
		}
	default:
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer kafkaProducer.Close()
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()
		producer = kafkaProducer
		consume = func(ctx context.Context) error {
			return consumer.Consume(ctx, handler.Handle)
		}
	}

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		repository.NewRouteRepository(pool),
		resourceRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithBuffer(cfg.Scheduling.Buffer()),
		booking.WithLocation(location),
		booking.WithLogger(logger),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("notification consumer started", slog.String("transport", cfg.Notifications.Transport))
		if err := consume(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sweepCompleted(ctx, bookingService, cfg.Worker.CompletionSweep(), logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}

// sweepCompleted closes out assigned bookings whose last leg has finished.
func sweepCompleted(ctx context.Context, svc booking.BookingUseCase, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			completed, err := svc.CompleteFinishedBookings(ctx, time.Now())
			if err != nil {
				logger.Error("complete bookings", slog.String("error", err.Error()))
				continue
			}
			if len(completed) > 0 {
				logger.Info("completed bookings", slog.Int("count", len(completed)))
			}
		}
	}
}
