package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/config"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

const (
	handlerMaxRetries  = 3
	handlerBackoff     = time.Second
	handlerMaxBackoff  = 30 * time.Second
	fetchErrorCooldown = time.Second
)

// DetectionHandler processes one consumed detection. Handlers must be
// idempotent on the detection ID: redelivery after a crash replays messages.
type DetectionHandler func(ctx context.Context, d *valuation.Detection) error

// readerInterface abstracts kafka.Reader so tests can substitute it.
type readerInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads recorded-detection events and hands each decoded detection
// to the configured handler. Offsets are committed only after the handler
// returns, or after retries are exhausted and the message is dropped.
type Consumer struct {
	reader  readerInterface
	handler DetectionHandler
	logger  logging.Logger

	retryBackoff    time.Duration
	maxRetryBackoff time.Duration
}

// NewConsumer builds a consumer group member on the detection topic.
func NewConsumer(cfg config.KafkaConfig, handler DetectionHandler, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers are required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka group id is required")
	}
	if handler == nil {
		return nil, errors.New(errors.ErrCodeValidation, "detection handler is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	startOffset := kafka.FirstOffset
	if cfg.AutoOffsetReset == "latest" {
		startOffset = kafka.LastOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       TopicDetectionRecorded,
		StartOffset: startOffset,
	})

	return &Consumer{
		reader:          reader,
		handler:         handler,
		logger:          logger.Named("consumer"),
		retryBackoff:    handlerBackoff,
		maxRetryBackoff: handlerMaxBackoff,
	}, nil
}

// Run consumes until the context is cancelled. Cancellation is the normal
// shutdown path and is not reported as an error.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to fetch message", logging.Err(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchErrorCooldown):
			}
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to commit offset", logging.Err(err))
		}
	}
}

// process decodes and handles one message, retrying transient handler
// failures with exponential backoff. Undecodable messages are dropped.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	env, err := DecodeEnvelope(msg.Value)
	if err != nil {
		c.logger.Error("dropping undecodable message",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err),
		)
		return
	}

	var d valuation.Detection
	if err := env.DecodePayload(&d); err != nil {
		c.logger.Error("dropping message with undecodable payload",
			logging.String("event_id", env.EventID),
			logging.Err(err),
		)
		return
	}

	backoff := c.retryBackoff
	for attempt := 0; ; attempt++ {
		err := c.handler(ctx, &d)
		if err == nil {
			return
		}
		if attempt >= handlerMaxRetries {
			c.logger.Error("dropping detection after retries",
				logging.String("detection_id", d.ID.String()),
				logging.Int("attempts", attempt+1),
				logging.Err(err),
			)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.maxRetryBackoff {
			backoff = c.maxRetryBackoff
		}
	}
}

// Close releases the group membership and the underlying connections.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
