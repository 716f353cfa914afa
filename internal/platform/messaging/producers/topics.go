package producers

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"github.com/wallet-ledger/internal/config"
)

// EnsureTopic creates topic on the cluster controller unless it already
// exists. Brokers that are still starting up are retried for a while.
func EnsureTopic(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig, topic string) error {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second

	return backoff.RetryNotify(func() error {
		return createTopic(ctx, brokers[0], topic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		logger.Warn("kafka not ready, retrying topic creation", "topic", topic, "error", err, "retry_in", wait)
	})
}

func createTopic(ctx context.Context, broker, topic string, partitions, replication int, logger *slog.Logger) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	existing, err := conn.ReadPartitions(topic)
	if err == nil && len(existing) > 0 {
		logger.Debug("kafka topic already exists", "topic", topic)
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get kafka controller: %w", err)
	}
	ctrl, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer ctrl.Close()

	err = ctrl.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: replication,
	})
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}
	logger.Info("kafka topic created", "topic", topic, "partitions", partitions)
	return nil
}
