package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/config"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
	"github.com/crawlmeter/crawlmeter/internal/domain/pricing"
	apperrors "github.com/crawlmeter/crawlmeter/pkg/errors"
)

type fakeWriter struct {
	messages []kafka.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleDetection() *valuation.Detection {
	return &valuation.Detection{
		ID:         uuid.New(),
		SourceID:   "site-1",
		UserAgent:  "GPTBot/1.0",
		Locator:    "https://example.com/research/paper",
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Classification: detection.ClassificationResult{
			IsBot: true, Confidence: 95, ActorName: "OpenAI",
			RiskLevel: detection.RiskHigh, Commercial: true,
		},
		Valuation: pricing.ValuationResult{
			EstimatedValue:     decimal.RequireFromString("1.50"),
			LicensingPotential: pricing.LicensingHigh,
		},
	}
}

func newTestProducer(w writerInterface) *Producer {
	p, _ := NewProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, nil)
	p.writer = w
	return p
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
}

func TestDetectionRecorded(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	d := sampleDetection()

	require.NoError(t, p.DetectionRecorded(context.Background(), d))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, TopicDetectionRecorded, msg.Topic)
	assert.Equal(t, d.ID.String(), string(msg.Key))

	env, err := DecodeEnvelope(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, EventTypeDetectionRecorded, env.EventType)
	assert.Equal(t, "v1", env.SchemaVersion)
	assert.NotEmpty(t, env.EventID)

	var got valuation.Detection
	require.NoError(t, env.DecodePayload(&got))
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, d.Classification, got.Classification)
	assert.True(t, d.Valuation.EstimatedValue.Equal(got.Valuation.EstimatedValue))
}

func TestAlert(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.Alert(context.Background(), sampleDetection()))
	require.Len(t, w.messages, 1)
	assert.Equal(t, TopicValuationAlert, w.messages[0].Topic)

	env, err := DecodeEnvelope(w.messages[0].Value)
	require.NoError(t, err)
	assert.Equal(t, EventTypeValuationAlert, env.EventType)
}

func TestPublish_WriteError(t *testing.T) {
	w := &fakeWriter{writeErr: errors.New("broker unavailable")}
	p := newTestProducer(w)

	err := p.DetectionRecorded(context.Background(), sampleDetection())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.GetCode(err))
}

func TestPublish_AfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	err := p.DetectionRecorded(context.Background(), sampleDetection())
	assert.ErrorIs(t, err, ErrProducerClosed)

	// Second close is a no-op.
	assert.NoError(t, p.Close())
}
