package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/data/mongo"
	"github.com/wallet-ledger/internal/data/postgres"
	"github.com/wallet-ledger/internal/ledger/components"
	ledger "github.com/wallet-ledger/internal/ledger/service"
	"github.com/wallet-ledger/internal/logger"
	"github.com/wallet-ledger/internal/platform/exchange"
	"github.com/wallet-ledger/internal/platform/messaging/consumers"
	"github.com/wallet-ledger/internal/platform/messaging/producers"
	"github.com/wallet-ledger/internal/platform/metrics"
	"github.com/wallet-ledger/internal/platform/persistence"
	"github.com/wallet-ledger/internal/transaction_processor/consumer"
	"github.com/wallet-ledger/internal/transaction_processor/outbox_poller"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("transaction_processor")
	if err != nil {
		// no logger yet
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting transaction processor", "app_name", cfg.Application.Name, "env", cfg.Application.Env)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisDB, err := persistence.NewRedis(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	txRepo := postgres.NewTransactionRepository(log, postgresDB)
	logRepo := postgres.NewTransactionLogRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())
	if err := auditRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create audit indexes", "error", err)
		os.Exit(1)
	}

	rates := exchange.NewCachedRateProvider(log, exchange.NewHTTPRateProvider(log, &cfg.ExchangeRate), redisDB.Client(), &cfg.ExchangeRate, m)

	engine := components.CreateProcessingService(components.Dependencies{
		DB:           postgresDB,
		Wallets:      walletRepo,
		Transactions: txRepo,
		Logs:         logRepo,
		Outbox:       outboxRepo,
		Audit:        auditRepo,
		Converter:    exchange.NewConverter(rates),
		Metrics:      m,
		Logger:       log,
		Config:       cfg,
	})

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ producer", "error", err)
		os.Exit(1)
	}

	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)
	eventHandler := consumer.NewTransactionEventHandler(log, engine, dlqProducer)

	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo,
		outbox_poller.NewAuditArchiver(outboxRepo, auditRepo, log), m, log)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           metricsMux(cfg.Metrics.Path, m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer", "topic", cfg.Kafka.TransactionTopic, "group", cfg.Kafka.ConsumerGroup)
		if err := kafkaConsumer.Run(appCtx, eventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting outbox poller", "interval", cfg.Outbox.PollingInterval.String(), "batch_size", cfg.Outbox.BatchSize)
		poller.Start(appCtx)
	}()

	go func() {
		log.Info("Serving metrics", "addr", metricsServer.Addr, "path", cfg.Metrics.Path)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serviceErr = <-errChan:
		log.Error("Service error occurred", "error", serviceErr)
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")
	failed := serviceErr != nil

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info("Consumer and poller stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
		failed = true
	}

	if pooled, ok := engine.(*ledger.WorkerPoolProcessingService); ok {
		log.Info("Shutting down worker pool", "running_workers", pooled.Running())
		pooled.Shutdown()
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping metrics server", "error", err)
		failed = true
	}
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
		failed = true
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ producer", "error", err)
		failed = true
	}
	if err := redisDB.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
		failed = true
	}
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		failed = true
	}
	postgresDB.Close()

	if failed {
		log.Error("Transaction processor shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Transaction processor shutdown completed successfully")
}

func metricsMux(path string, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	return mux
}
