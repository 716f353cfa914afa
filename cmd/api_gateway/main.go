package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wallet-ledger/internal/api_gateway"
	"github.com/wallet-ledger/internal/api_gateway/service"
	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/data/mongo"
	"github.com/wallet-ledger/internal/data/postgres"
	"github.com/wallet-ledger/internal/ledger/components"
	ledger "github.com/wallet-ledger/internal/ledger/service"
	"github.com/wallet-ledger/internal/logger"
	"github.com/wallet-ledger/internal/platform/exchange"
	"github.com/wallet-ledger/internal/platform/messaging/producers"
	"github.com/wallet-ledger/internal/platform/metrics"
	"github.com/wallet-ledger/internal/platform/persistence"
	"github.com/wallet-ledger/internal/provisioning"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// no logger yet
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

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

	requestProducer, err := producers.NewTransactionRequestProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	accountRepo := postgres.NewAccountRepository(log, postgresDB)
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
	converter := exchange.NewConverter(rates)

	engine := components.CreateProcessingService(components.Dependencies{
		DB:           postgresDB,
		Wallets:      walletRepo,
		Transactions: txRepo,
		Logs:         logRepo,
		Outbox:       outboxRepo,
		Audit:        auditRepo,
		Converter:    converter,
		Metrics:      m,
		Logger:       log,
		Config:       cfg,
	})

	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Accounts: service.NewAccountService(postgresDB, accountRepo, walletRepo,
			provisioning.NewProvisioner(walletRepo, log), converter, cfg.Ledger, log),
		Transactions: service.NewTransactionService(engine, requestProducer, txRepo, logRepo, walletRepo, log),
		Reports:      service.NewReportService(auditRepo),
	}, m, map[string]api_gateway.Pinger{
		"postgres": postgresDB,
		"mongodb":  mongoDB,
		"redis":    redisDB,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serverErr = <-errChan:
		log.Error("Server error occurred", "error", serverErr)
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")
	failed := serverErr != nil

	// stop intake before the pool and the stores go away
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		failed = true
	}
	if pooled, ok := engine.(*ledger.WorkerPoolProcessingService); ok {
		log.Info("Shutting down worker pool", "running_workers", pooled.Running())
		pooled.Shutdown()
	}
	if err := requestProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
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
		log.Error("API gateway shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("API gateway shutdown completed successfully")
}
