package bootstrap

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/config"
	"github.com/crawlmeter/crawlmeter/internal/domain/content"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/database/postgres"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/database/postgres/repositories"
	kafkamsg "github.com/crawlmeter/crawlmeter/internal/infrastructure/messaging/kafka"
)

// RunWorker consumes recorded-detection events, persists them, and emits
// alert events for high-value detections. It runs until ctx is cancelled.
func RunWorker(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	db, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(db, logger); err != nil {
		return err
	}
	repo := repositories.NewDetectionRepository(db, logger)

	producer, err := kafkamsg.NewProducer(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer producer.Close()

	rates, err := newRateSource(ctx, cfg.Pricing, logger)
	if err != nil {
		return err
	}

	svc := valuation.NewService(
		detection.NewClassifier(nil),
		content.NewExtractor(nil, nil, logger),
		rates,
		logger,
		valuation.WithSink(repo),
		valuation.WithNotifier(producer, cfg.Pricing.AlertThreshold),
	)

	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultWorkerConcurrency
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		consumer, err := kafkamsg.NewConsumer(cfg.Kafka, svc.HandleRecorded, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			defer consumer.Close()
			return consumer.Run(ctx)
		})
	}
	return g.Wait()
}
