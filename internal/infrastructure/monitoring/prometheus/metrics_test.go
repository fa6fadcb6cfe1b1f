package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
	"github.com/crawlmeter/crawlmeter/internal/domain/pricing"
)

func testDetection(actor string, isBot bool, value string) *valuation.Detection {
	return &valuation.Detection{
		Classification: detection.ClassificationResult{ActorName: actor, IsBot: isBot},
		Valuation: pricing.ValuationResult{
			EstimatedValue: decimal.RequireFromString(value),
		},
	}
}

func TestObserveDetection(t *testing.T) {
	m := NewMetrics()

	m.ObserveDetection(testDetection("OpenAI", true, "1.50"))
	m.ObserveDetection(testDetection("OpenAI", true, "0.25"))
	m.ObserveDetection(testDetection("Unknown", false, "0.02"))

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.DetectionsTotal.WithLabelValues("OpenAI", "true")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.DetectionsTotal.WithLabelValues("Unknown", "false")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.EstimatedValue))
}

func TestObserveAlert(t *testing.T) {
	m := NewMetrics()

	m.ObserveAlert(testDetection("OpenAI", true, "1.50"))

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.AlertsTotal.WithLabelValues("OpenAI")))
}

func TestObserveHTTPRequest(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/detections", 200, 15*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/detections", 400, 2*time.Millisecond)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/detections", "200")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/detections", "400")))
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveDetection(testDetection("OpenAI", true, "1.50"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "crawlmeter_detections_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.ObserveDetection(testDetection("OpenAI", true, "1.00"))

	assert.Equal(t, float64(1),
		testutil.ToFloat64(a.DetectionsTotal.WithLabelValues("OpenAI", "true")))
	assert.Equal(t, float64(0),
		testutil.ToFloat64(b.DetectionsTotal.WithLabelValues("OpenAI", "true")))
}
