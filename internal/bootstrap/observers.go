package bootstrap

import (
	"context"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/prometheus"
)

// observedSink counts each stored detection before delegating.
type observedSink struct {
	sink    valuation.DetectionSink
	metrics *prometheus.Metrics
}

func (s observedSink) Store(ctx context.Context, d *valuation.Detection) error {
	if err := s.sink.Store(ctx, d); err != nil {
		return err
	}
	s.metrics.ObserveDetection(d)
	return nil
}

// observedNotifier counts each fired alert before delegating.
type observedNotifier struct {
	sink    valuation.NotificationSink
	metrics *prometheus.Metrics
}

func (n observedNotifier) Alert(ctx context.Context, d *valuation.Detection) error {
	if err := n.sink.Alert(ctx, d); err != nil {
		return err
	}
	n.metrics.ObserveAlert(d)
	return nil
}
