// Package valuation orchestrates the classify, extract, price pipeline and
// hands the outcome to the persistence and notification boundaries. The
// domain stages stay pure; everything fallible lives behind the interfaces
// defined here.
package valuation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crawlmeter/crawlmeter/internal/domain/content"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
	"github.com/crawlmeter/crawlmeter/internal/domain/pricing"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

// Detection is one fully processed access: the classification, the content
// features, and the valuation, stamped with identity and time for storage.
type Detection struct {
	ID         uuid.UUID `json:"id"`
	SourceID   string    `json:"source_id"`
	UserAgent  string    `json:"user_agent"`
	Locator    string    `json:"locator"`
	OccurredAt time.Time `json:"occurred_at"`

	Classification detection.ClassificationResult `json:"classification"`
	Features       content.FeatureBundle          `json:"features"`
	Valuation      pricing.ValuationResult        `json:"valuation"`
}

// DetectionSink durably stores processed detections.
type DetectionSink interface {
	Store(ctx context.Context, d *Detection) error
}

// DetectionSource reads stored detections back for reporting.
type DetectionSource interface {
	ListWindow(ctx context.Context, from, to time.Time) ([]Detection, error)
}

// EventPublisher announces each recorded detection to downstream consumers.
type EventPublisher interface {
	DetectionRecorded(ctx context.Context, d *Detection) error
}

// NotificationSink receives an alert when a detection's estimated value
// crosses the configured threshold.
type NotificationSink interface {
	Alert(ctx context.Context, d *Detection) error
}

// RateSource supplies the current rate-table snapshot. Implementations swap
// snapshots atomically on reload, so each Process call prices against one
// coherent table.
type RateSource interface {
	Snapshot() pricing.RateTables
}

// staticRates adapts a fixed table to RateSource.
type staticRates struct{ tables pricing.RateTables }

func (s staticRates) Snapshot() pricing.RateTables { return s.tables }

// StaticRates wraps a fixed rate table as a RateSource, for callers without
// hot reload.
func StaticRates(tables pricing.RateTables) RateSource {
	return staticRates{tables: tables}
}

// ProcessRequest is one access to classify and value.
type ProcessRequest struct {
	UserAgent string
	Locator   string
	SourceID  string

	// Optional overrides for callers that already know the content better
	// than the resolver does. Zero values mean "not supplied".
	WordCount      int
	QualityScore   int
	PublishAgeDays *int

	// ForceRefresh bypasses the feature-bundle cache.
	ForceRefresh bool
}

// Option configures a Service.
type Option func(*Service)

// WithSink attaches a durable detection store.
func WithSink(sink DetectionSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithPublisher attaches a detection event publisher.
func WithPublisher(pub EventPublisher) Option {
	return func(s *Service) { s.publisher = pub }
}

// WithNotifier attaches an alert sink fired at or above threshold.
func WithNotifier(n NotificationSink, threshold float64) Option {
	return func(s *Service) {
		s.notifier = n
		s.alertThreshold = decimal.NewFromFloat(threshold)
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service runs the pipeline for single accesses.
type Service struct {
	classifier *detection.Classifier
	extractor  *content.Extractor
	rates      RateSource
	logger     logging.Logger

	sink           DetectionSink
	publisher      EventPublisher
	notifier       NotificationSink
	alertThreshold decimal.Decimal

	now func() time.Time
}

// NewService wires the pipeline. classifier, extractor, and rates are
// required; sinks are optional.
func NewService(classifier *detection.Classifier, extractor *content.Extractor, rates RateSource, logger logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{
		classifier: classifier,
		extractor:  extractor,
		rates:      rates,
		logger:     logger.Named("valuation"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process classifies, extracts, and prices one access, then stores,
// publishes, and possibly alerts. Storage failures are returned as coded
// errors; publish and alert failures are logged and do not fail the call,
// since the valuation itself is already durable by then.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*Detection, error) {
	cls := s.classifier.Classify(req.UserAgent)

	features, err := s.extractor.Extract(ctx, req.Locator, content.ExtractOptions{ForceRefresh: req.ForceRefresh})
	if err != nil {
		return nil, err
	}
	applyOverrides(&features, req)

	engine := pricing.NewEngine(s.rates.Snapshot())
	valuation := engine.Price(cls, features)

	d := &Detection{
		ID:             uuid.New(),
		SourceID:       req.SourceID,
		UserAgent:      req.UserAgent,
		Locator:        req.Locator,
		OccurredAt:     s.now().UTC(),
		Classification: cls,
		Features:       features,
		Valuation:      valuation,
	}

	if s.sink != nil {
		if err := s.sink.Store(ctx, d); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValuationStoreFailed, "failed to store detection")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.DetectionRecorded(ctx, d); err != nil {
			s.logger.Warn("detection event publish failed",
				logging.String("detection_id", d.ID.String()),
				logging.Err(err),
			)
		}
	}

	s.maybeAlert(ctx, d)

	s.logger.Info("access processed",
		logging.String("detection_id", d.ID.String()),
		logging.String("actor", cls.ActorName),
		logging.Bool("is_bot", cls.IsBot),
		logging.String("estimated_value", valuation.EstimatedValue.String()),
	)

	return d, nil
}

// maybeAlert fires the notifier when the estimated value is at or above the
// threshold. Exposed to the worker path as well via HandleRecorded.
func (s *Service) maybeAlert(ctx context.Context, d *Detection) {
	if s.notifier == nil {
		return
	}
	if d.Valuation.EstimatedValue.LessThan(s.alertThreshold) {
		return
	}
	if err := s.notifier.Alert(ctx, d); err != nil {
		s.logger.Warn("valuation alert failed",
			logging.String("detection_id", d.ID.String()),
			logging.Err(err),
		)
	}
}

// HandleRecorded is the worker-side entry point for consumed detection
// events: it re-persists the detection and applies the alert rule. Store is
// expected to be idempotent on the detection ID.
func (s *Service) HandleRecorded(ctx context.Context, d *Detection) error {
	if s.sink != nil {
		if err := s.sink.Store(ctx, d); err != nil {
			return errors.Wrap(err, errors.ErrCodeValuationStoreFailed, "failed to store consumed detection")
		}
	}
	s.maybeAlert(ctx, d)
	return nil
}

func applyOverrides(features *content.FeatureBundle, req ProcessRequest) {
	if req.WordCount > 0 {
		features.WordCount = req.WordCount
	}
	if req.QualityScore > 0 {
		features.QualityScore = req.QualityScore
	}
	if req.PublishAgeDays != nil {
		features.PublishAgeDays = req.PublishAgeDays
	}
}
