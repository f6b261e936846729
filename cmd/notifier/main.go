package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/anigawade45/grocery-market/internal/config"
	kafkax "github.com/anigawade45/grocery-market/internal/kafka"
	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/anigawade45/grocery-market/internal/notify"
	"github.com/anigawade45/grocery-market/internal/postgres"
	"github.com/anigawade45/grocery-market/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("service", cfg.ServiceName+"-notifier"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	d := &notify.Dispatcher{
		Repo:  &notify.Repo{DB: db},
		Redis: rdb,
		Log:   logger,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, market.TopicNotifyRequested, cfg.NotifierWorkers, logger)
	logger.Info("notifier consumer started",
		zap.String("group", cfg.NotifierGroup),
		zap.String("topic", market.TopicNotifyRequested),
		zap.Int("workers", cfg.NotifierWorkers),
	)
	if err := cons.Start(ctx, d.HandleNotifyRequested); err != nil {
		logger.Error("consumer exit", zap.Error(err))
	}
}
