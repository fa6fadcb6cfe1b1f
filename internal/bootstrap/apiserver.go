// Package bootstrap assembles the full service from configuration. It is
// shared by the standalone binaries and the serve subcommand.
package bootstrap

import (
	"context"

	"github.com/crawlmeter/crawlmeter/internal/application/reporting"
	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/config"
	"github.com/crawlmeter/crawlmeter/internal/domain/content"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
	"github.com/crawlmeter/crawlmeter/internal/domain/pricing"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/database/postgres"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/database/postgres/repositories"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/database/redis"
	kafkamsg "github.com/crawlmeter/crawlmeter/internal/infrastructure/messaging/kafka"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/crawlmeter/crawlmeter/internal/interfaces/http"
	"github.com/crawlmeter/crawlmeter/internal/interfaces/http/handlers"
)

// newLogger builds the process logger from config and installs it as the
// package default.
func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
	})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}

// newClassifier loads the signature table override if configured.
func newClassifier(cfg config.DetectionConfig) (*detection.Classifier, error) {
	if cfg.SignaturesFile == "" {
		return detection.NewClassifier(nil), nil
	}
	signatures, err := config.LoadSignatures(cfg.SignaturesFile)
	if err != nil {
		return nil, err
	}
	return detection.NewClassifier(signatures), nil
}

// newRateSource loads the rate table override if configured and starts the
// hot-reload watcher on it.
func newRateSource(ctx context.Context, cfg config.PricingConfig, logger logging.Logger) (valuation.RateSource, error) {
	if cfg.RatesFile == "" {
		return valuation.StaticRates(pricing.DefaultRateTables()), nil
	}
	tables, err := config.LoadRateTables(cfg.RatesFile)
	if err != nil {
		return nil, err
	}
	store := config.NewRateTableStore(tables)
	if err := store.WatchFile(ctx, cfg.RatesFile, logger); err != nil {
		return nil, err
	}
	return store, nil
}

// RunAPIServer assembles and runs the HTTP API until ctx is cancelled.
func RunAPIServer(ctx context.Context, cfg *config.Config) error {
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

	// The bundle cache is an optimisation: if Redis is down we serve
	// uncached rather than refuse to start.
	var cache content.BundleCache
	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, extraction cache disabled", logging.Err(err))
	} else {
		defer rdb.Close()
		cache = redis.NewBundleCache(rdb, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithTTL(cfg.Redis.DefaultTTL),
		)
	}

	classifier, err := newClassifier(cfg.Detection)
	if err != nil {
		return err
	}
	rates, err := newRateSource(ctx, cfg.Pricing, logger)
	if err != nil {
		return err
	}

	metrics := prometheus.NewMetrics()

	opts := []valuation.Option{
		valuation.WithSink(observedSink{sink: repo, metrics: metrics}),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkamsg.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return err
		}
		defer producer.Close()
		opts = append(opts,
			valuation.WithPublisher(producer),
			valuation.WithNotifier(observedNotifier{sink: producer, metrics: metrics}, cfg.Pricing.AlertThreshold),
		)
	}

	svc := valuation.NewService(
		classifier,
		content.NewExtractor(nil, cache, logger),
		rates,
		logger,
		opts...,
	)

	checks := map[string]handlers.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return db.PingContext(ctx) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	routerCfg := httpiface.RouterConfig{
		DetectionHandler: handlers.NewDetectionHandler(svc),
		ReportHandler:    handlers.NewReportHandler(reporting.NewService(repo, logger)),
		HealthHandler:    handlers.NewHealthHandler(checks),
		Logger:           logger,
		MetricsPath:      cfg.Metrics.Path,
		Mode:             cfg.Server.Mode,
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = metrics
	}

	server := httpiface.NewServer(cfg.Server, httpiface.NewRouter(routerCfg), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		return server.Stop(context.Background())
	case err := <-errCh:
		return err
	}
}
