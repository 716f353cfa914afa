package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/domain/shared"
)

// TransactionRequestProducer writes requests keyed by transaction id so all
// redeliveries of one request land on the same partition.
type TransactionRequestProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func NewTransactionRequestProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*TransactionRequestProducer, error) {
	if cfg.TransactionTopic == "" {
		return nil, fmt.Errorf("kafka transaction topic is not configured")
	}
	if err := EnsureTopic(ctx, logger, cfg, cfg.TransactionTopic); err != nil {
		return nil, fmt.Errorf("failed to ensure transaction topic %s exists: %w", cfg.TransactionTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.TransactionTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &TransactionRequestProducer{
		logger: logger.With("topic", cfg.TransactionTopic),
		writer: writer,
		topic:  cfg.TransactionTopic,
	}, nil
}

// PublishRequest returns once the broker has acknowledged the message.
func (p *TransactionRequestProducer) PublishRequest(ctx context.Context, req *shared.TransactionRequest) error {
	value, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction request: %w", err)
	}

	key := req.TransactionID.String()
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "correlation-id", Value: []byte(req.CorrelationID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish transaction request", "transaction_id", key, "error", err)
		return fmt.Errorf("failed to publish transaction request to %s: %w", p.topic, err)
	}

	p.logger.Debug("published transaction request", "transaction_id", key, "account_id", req.AccountID)
	return nil
}

func (p *TransactionRequestProducer) Close() error {
	p.logger.Info("closing transaction request producer")
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
