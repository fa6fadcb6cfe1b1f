// Package reporting builds portfolio reports over stored detections and
// exports raw records. Serialization preserves every breakdown field so an
// export can reproduce each estimate.
package reporting

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/domain/portfolio"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// PortfolioReport is the aggregate over one time window.
type PortfolioReport struct {
	From    time.Time                  `json:"from"`
	To      time.Time                  `json:"to"`
	Summary portfolio.PortfolioSummary `json:"summary"`
}

// Service reads stored detections and produces reports.
type Service struct {
	source valuation.DetectionSource
	logger logging.Logger
}

// NewService constructs a reporting Service over a detection source.
func NewService(source valuation.DetectionSource, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{source: source, logger: logger.Named("reporting")}
}

// PortfolioReport aggregates all detections in [from, to]. An empty window
// yields a zero summary, not an error.
func (s *Service) PortfolioReport(ctx context.Context, from, to time.Time) (*PortfolioReport, error) {
	detections, err := s.source.ListWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]portfolio.Entry, 0, len(detections))
	for _, d := range detections {
		entries = append(entries, portfolio.Entry{
			Classification: d.Classification,
			Valuation:      d.Valuation,
		})
	}

	return &PortfolioReport{
		From:    from,
		To:      to,
		Summary: portfolio.Aggregate(entries),
	}, nil
}

// ListWindow exposes the raw detections for export endpoints.
func (s *Service) ListWindow(ctx context.Context, from, to time.Time) ([]valuation.Detection, error) {
	return s.source.ListWindow(ctx, from, to)
}

// Export writes detections to w in the given format. An empty slice still
// produces valid output (an empty JSON array, or a CSV header row).
func (s *Service) Export(w io.Writer, detections []valuation.Detection, format string) error {
	switch format {
	case FormatJSON:
		return s.exportJSON(w, detections)
	case FormatCSV:
		return s.exportCSV(w, detections)
	default:
		return errors.Newf(errors.ErrCodeValidation, "unsupported export format %q", format)
	}
}

func (s *Service) exportJSON(w io.Writer, detections []valuation.Detection) error {
	if detections == nil {
		detections = []valuation.Detection{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(detections); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportExportFailed, "json export failed")
	}
	return nil
}

// csvHeader fixes the column set and order of CSV exports. Every breakdown
// factor gets its own column.
var csvHeader = []string{
	"id", "source_id", "user_agent", "locator", "occurred_at",
	"is_bot", "confidence", "actor", "risk_level", "commercial",
	"content_type", "word_count", "quality_score", "technical_depth",
	"characteristics", "publish_age_days", "low_confidence",
	"estimated_value", "base_value", "actor_multiplier",
	"characteristic_multiplier", "market_multiplier", "confidence_factor",
	"risk_factor", "licensing_potential", "market_context",
}

func (s *Service) exportCSV(w io.Writer, detections []valuation.Detection) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportExportFailed, "csv export failed")
	}

	for _, d := range detections {
		ageDays := ""
		if d.Features.PublishAgeDays != nil {
			ageDays = strconv.Itoa(*d.Features.PublishAgeDays)
		}

		record := []string{
			d.ID.String(),
			d.SourceID,
			d.UserAgent,
			d.Locator,
			d.OccurredAt.Format(time.RFC3339),
			strconv.FormatBool(d.Classification.IsBot),
			strconv.Itoa(d.Classification.Confidence),
			d.Classification.ActorName,
			string(d.Classification.RiskLevel),
			strconv.FormatBool(d.Classification.Commercial),
			string(d.Features.ContentType),
			strconv.Itoa(d.Features.WordCount),
			strconv.Itoa(d.Features.QualityScore),
			string(d.Features.TechnicalDepth),
			strings.Join(d.Features.Characteristics, "|"),
			ageDays,
			strconv.FormatBool(d.Features.LowConfidence),
			d.Valuation.EstimatedValue.String(),
			formatFloat(d.Valuation.Breakdown.BaseValue),
			formatFloat(d.Valuation.Breakdown.ActorMultiplier),
			formatFloat(d.Valuation.Breakdown.CharacteristicMultiplier),
			formatFloat(d.Valuation.Breakdown.MarketMultiplier),
			formatFloat(d.Valuation.Breakdown.ConfidenceFactor),
			formatFloat(d.Valuation.Breakdown.RiskFactor),
			string(d.Valuation.LicensingPotential),
			d.Valuation.MarketContext,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrCodeReportExportFailed, "csv export failed")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportExportFailed, "csv export failed")
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
