package producers

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/wallet-ledger/internal/domain/shared"
)

// RequestPublisher enqueues transaction requests for the processor.
type RequestPublisher interface {
	PublishRequest(ctx context.Context, req *shared.TransactionRequest) error
	Close() error
}

// DeadLetterPublisher parks messages the processor can never apply.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
