// Package http wires the gin route tree and the HTTP server around it.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/crawlmeter/crawlmeter/internal/config"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/prometheus"
	"github.com/crawlmeter/crawlmeter/internal/interfaces/http/handlers"
	"github.com/crawlmeter/crawlmeter/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and infrastructure dependencies the
// route tree needs. Nil handlers leave their routes unregistered, nil
// metrics leaves /metrics off.
type RouterConfig struct {
	DetectionHandler *handlers.DetectionHandler
	ReportHandler    *handlers.ReportHandler
	HealthHandler    *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.Metrics

	MetricsPath string
	Mode        string
}

// NewRouter builds the complete HTTP route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = config.DefaultMetricsPath
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, "/healthz", "/readyz", cfg.MetricsPath))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET(cfg.MetricsPath, gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.DetectionHandler != nil {
		api.POST("/detections", cfg.DetectionHandler.Record)
	}
	if cfg.ReportHandler != nil {
		api.GET("/detections", cfg.ReportHandler.Export)
		api.GET("/portfolio/summary", cfg.ReportHandler.PortfolioSummary)
	}

	return r
}
