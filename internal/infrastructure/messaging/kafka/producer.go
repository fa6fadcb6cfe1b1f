package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/config"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

const producerSource = "crawlmeter"

// ErrProducerClosed is returned by publish calls after Close.
var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "kafka producer is closed")

// writerInterface abstracts kafka.Writer so tests can substitute it.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes detection events. It implements both
// valuation.EventPublisher and valuation.NotificationSink: recorded
// detections go to the detection topic, threshold alerts to the alert topic.
type Producer struct {
	writer writerInterface
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer builds a producer over one shared writer. Messages are keyed
// by detection ID so replays of the same detection land on one partition.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers are required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	maxAttempts := cfg.ProducerRetries + 1
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  maxAttempts,
		BatchSize:    batchSize,
		BatchTimeout: time.Second,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	return &Producer{writer: writer, logger: logger.Named("producer")}, nil
}

// DetectionRecorded publishes a detection to the recorded-detections topic.
func (p *Producer) DetectionRecorded(ctx context.Context, d *valuation.Detection) error {
	return p.publish(ctx, TopicDetectionRecorded, EventTypeDetectionRecorded, d)
}

// Alert publishes a high-value detection to the alert topic.
func (p *Producer) Alert(ctx context.Context, d *valuation.Detection) error {
	return p.publish(ctx, TopicValuationAlert, EventTypeValuationAlert, d)
}

func (p *Producer) publish(ctx context.Context, topic, eventType string, d *valuation.Detection) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	env, err := NewEventEnvelope(eventType, producerSource, d)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(d.ID.String()),
		Value: value,
		Time:  env.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to publish event")
	}

	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("detection_id", d.ID.String()),
	)
	return nil
}

// Close flushes and closes the underlying writer. Safe to call twice.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed")
	return err
}
