package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"github.com/wallet-ledger/internal/config"
)

// MessageHandler processes one message. A nil error commits the offset; any
// other error redelivers the same message after a backoff.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

type Consumer interface {
	Run(ctx context.Context, handler MessageHandler) error
	Close() error
}

// MessageReader is the part of kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConsumer struct {
	reader   MessageReader
	topic    string
	groupID  string
	newRetry func() backoff.BackOff
	logger   *slog.Logger
}

func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.BrokerList(),
		Topic:       cfg.TransactionTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: startOffset,
	})
	return newKafkaConsumer(logger, reader, cfg.TransactionTopic, cfg.ConsumerGroup)
}

func newKafkaConsumer(logger *slog.Logger, reader MessageReader, topic, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		reader:  reader,
		topic:   topic,
		groupID: groupID,
		newRetry: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
		logger: logger.With("topic", topic, "group_id", groupID),
	}
}

// Run consumes until ctx is cancelled. Messages of a partition are handled in
// order: a failing message is retried before the next one is fetched.
func (c *KafkaConsumer) Run(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("consuming kafka topic")

	fetchRetry := c.newRetry()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("context cancelled, stopping consumer")
				return nil
			}
			wait := fetchRetry.NextBackOff()
			c.logger.Error("failed to fetch message", "error", err, "retry_in", wait)
			if !sleep(ctx, wait) {
				return nil
			}
			continue
		}
		fetchRetry.Reset()

		if err := c.handle(ctx, handler, msg); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				c.logger.Info("context cancelled, leaving message uncommitted", "offset", msg.Offset)
				return nil
			}
			return err
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, handler MessageHandler, msg kafka.Message) error {
	logger := c.logger.With("partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
	logger.Debug("received message")

	err := backoff.RetryNotify(func() error {
		return handler(ctx, msg.Key, msg.Value)
	}, backoff.WithContext(c.newRetry(), ctx), func(err error, wait time.Duration) {
		logger.Error("failed to process message, offset not committed", "error", err, "retry_in", wait)
	})
	if err != nil {
		return err
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		logger.Error("failed to commit message", "error", err)
		return nil
	}
	logger.Debug("message committed")
	return nil
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
