package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smirnov-d/railbooking/config"
	"github.com/smirnov-d/railbooking/internal/cache"
	"github.com/smirnov-d/railbooking/internal/email"
	"github.com/smirnov-d/railbooking/internal/kafka"
	"github.com/smirnov-d/railbooking/internal/ledger"
	"github.com/smirnov-d/railbooking/internal/repository"
	"github.com/smirnov-d/railbooking/internal/service/booking"
	"github.com/smirnov-d/railbooking/internal/service/predict"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer cleanup()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Predict.CacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	predictService, err := predict.NewService(cfg.Predict.ArtifactDir, redisCache)
	if err != nil {
		log.Fatalf("load prediction models: %v", err)
	}

	bookingService := booking.NewBookingService(
		store,
		store,
		predictService,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			archived, err := bookingService.ArchiveStale(ctx)
			if err != nil {
				log.Printf("archive sweep error: %v", err)
				continue
			}
			if len(archived) > 0 {
				log.Printf("archived %d bookings", len(archived))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config) (ledger.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "", "bolt":
		store, err := ledger.NewBoltStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "csv":
		store, err := ledger.NewCSVStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		return repository.NewLedgerStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
