package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trogers1052/opportunity-radar/internal/api"
	"github.com/trogers1052/opportunity-radar/internal/cache"
	"github.com/trogers1052/opportunity-radar/internal/config"
	"github.com/trogers1052/opportunity-radar/internal/database"
	"github.com/trogers1052/opportunity-radar/internal/detail"
	"github.com/trogers1052/opportunity-radar/internal/kafka"
	"github.com/trogers1052/opportunity-radar/internal/logger"
	"github.com/trogers1052/opportunity-radar/internal/radar"
	"github.com/trogers1052/opportunity-radar/internal/scheduler"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher, err := radar.NewFetcher(cfg.Source.URL, cfg.Source.Timeout)
	if err != nil {
		zl.Fatal("invalid snapshot source", zap.Error(err))
	}

	opts := []radar.Option{radar.WithLogger(zl)}

	if cfg.Redis.Addr != "" {
		locker := cache.NewRedisLocker(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.LockTTL)
		defer locker.Close()
		if err := locker.Ping(ctx); err != nil {
			zl.Warn("redis unreachable, refresh lock will fail open", zap.Error(err))
		}
		opts = append(opts, radar.WithLocker(locker))
		zl.Info("refresh lock enabled", zap.String("redis", cfg.Redis.Addr))
	}

	var history api.HistoryStore
	if cfg.Database.Enabled {
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			zl.Fatal("failed to run migrations", zap.Error(err))
		}
		opts = append(opts, radar.WithObserver(db))
		history = db
		zl.Info("snapshot archive enabled", zap.String("host", cfg.Database.Host))
	}

	var producer *kafka.Producer
	if cfg.Kafka.KafkaEnabled() {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		opts = append(opts, radar.WithObserver(producer))
		zl.Info("snapshot events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	ctrl := radar.NewController(fetcher, opts...)

	handler := api.NewHandler(ctrl, &detail.Builder{ContactAddress: cfg.Contact.Address}, history, zl)
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.SetupRoutes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("http server listening", zap.String("addr", srv.Addr), zap.String("source", fetcher.Source()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server failed", zap.Error(err))
		}
	}()

	// The page shows its loading state until the first load finishes.
	if err := ctrl.Activate(ctx); err != nil {
		zl.Fatal("failed to activate", zap.Error(err))
	}

	if cfg.Kafka.KafkaEnabled() && cfg.Kafka.ConsumeTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumeTopic, cfg.Kafka.ConsumerGroup, ctrl, zl)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				zl.Error("kafka consumer stopped", zap.Error(err))
			}
		}()
	}

	var cron *scheduler.Runner
	if cfg.Refresh.Schedule != "" {
		cron = scheduler.New(zl, ctx)
		if _, err := cron.AddRefresh(cfg.Refresh.Schedule, ctrl); err != nil {
			zl.Fatal("invalid refresh schedule", zap.Error(err))
		}
		cron.Start()
	}

	<-ctx.Done()
	zl.Info("shutting down")

	if cron != nil {
		cron.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http shutdown failed", zap.Error(err))
	}
	ctrl.Wait()
}
