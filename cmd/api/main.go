package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anigawade45/grocery-market/internal/cart"
	"github.com/anigawade45/grocery-market/internal/config"
	"github.com/anigawade45/grocery-market/internal/httpx"
	kafkax "github.com/anigawade45/grocery-market/internal/kafka"
	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/anigawade45/grocery-market/internal/notify"
	"github.com/anigawade45/grocery-market/internal/order"
	"github.com/anigawade45/grocery-market/internal/payment"
	"github.com/anigawade45/grocery-market/internal/postgres"
	"github.com/anigawade45/grocery-market/internal/redisx"
	"github.com/anigawade45/grocery-market/internal/review"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for notification requests. It runs on its own context
	// so the shutdown signal does not close it while the HTTP server is
	// still draining handlers that publish.
	prodCtx, prodCancel := context.WithCancel(context.Background())
	defer prodCancel()
	prod := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicNotifyRequested, 1024, logger)
	prod.Start(prodCtx)
	sender := &notify.KafkaSender{Producer: prod, Service: cfg.ServiceName}

	// Services
	cartSvc := cart.NewService(&cart.PGRepo{DB: db})
	orderSvc := order.NewService(&order.PGStore{DB: db}, sender)
	reviewSvc := review.NewService(&review.PGStore{DB: db}, sender)
	engine := &payment.Engine{
		Store:    &payment.PGStore{DB: db},
		Redis:    rdb,
		Sender:   sender,
		Log:      logger,
		LeadDays: cfg.DeliveryLeadDays,
	}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.CartHandler{Svc: cartSvc, Log: logger}).Register(router)
	(&httpx.OrdersHandler{Svc: orderSvc, Cache: &redisx.StatusCache{Client: rdb}, Log: logger}).Register(router)
	(&httpx.ReviewsHandler{Svc: reviewSvc, Log: logger}).Register(router)
	(&httpx.WebhookHandler{Engine: engine, Secret: cfg.WebhookSecret, Log: logger}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("exit", zap.Error(err))
	}

	// server fully drained, now flush and stop the producer
	prod.Close()
	prod.WaitClosed()
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
