package components

import (
	"log/slog"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/domain/audit"
	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/ledger/service"
	"github.com/wallet-ledger/internal/platform/metrics"
	"github.com/wallet-ledger/internal/platform/persistence"
)

// Dependencies are the stores and clients the ledger engine is built from.
type Dependencies struct {
	DB           persistence.TxBeginner
	Wallets      wallet.Repository
	Transactions transaction.Repository
	Logs         transaction.LogRepository
	Outbox       outbox.Repository
	Audit        audit.Repository // only needed with RecordConversionFailures
	Converter    service.CurrencyConverter
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	Config       *config.Config
}

// CreateEngine wires the ledger engine.
func CreateEngine(deps Dependencies) *service.ProcessingServiceImpl {
	logger := deps.Logger.With("component", "ledger_engine")

	var rejections service.RejectionRecorder
	if deps.Config.Ledger.RecordConversionFailures && deps.Audit != nil {
		rejections = NewRejectionRecorder(deps.Audit, logger)
	}

	return service.NewProcessingService(
		deps.DB,
		NewTransactionValidator(deps.Transactions, deps.Logs, logger),
		deps.Converter,
		NewWalletManager(deps.Wallets, logger),
		NewLedgerRecorder(deps.Transactions, deps.Logs, deps.Outbox, logger),
		rejections,
		deps.Metrics,
		service.RetryConfig{
			MaxAttempts:     deps.Config.Ledger.MaxRetries,
			InitialInterval: deps.Config.Ledger.RetryInitialInterval,
			MaxInterval:     deps.Config.Ledger.RetryMaxInterval,
		},
		logger,
	)
}

// CreateProcessingService wraps the engine in a worker pool sized by
// WorkerPool.Size, falling back to the bare engine if the pool cannot start.
func CreateProcessingService(deps Dependencies) service.ProcessingService {
	engine := CreateEngine(deps)

	pooled, err := service.NewWorkerPoolProcessingService(
		engine,
		service.WorkerPoolConfig{Size: deps.Config.WorkerPool.Size},
		deps.Logger.With("component", "worker_pool"),
	)
	if err != nil {
		deps.Logger.Error("failed to create worker pool service, falling back to engine", "error", err)
		return engine
	}

	deps.Logger.Info("created worker pool processing service", "pool_size", deps.Config.WorkerPool.Size)
	return pooled
}
