package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/crawlmeter/crawlmeter/internal/domain/content"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
)

// LicensingPotential is the coarse qualitative label derived from the final
// value and the commercial flag.
type LicensingPotential string

const (
	LicensingLow    LicensingPotential = "low"
	LicensingMedium LicensingPotential = "medium"
	LicensingHigh   LicensingPotential = "high"
)

// Documented defaults substituted for missing numeric inputs, and the fixed
// thresholds for the licensing label.
const (
	defaultConfidence = 50
	defaultWordCount  = 500
	defaultQuality    = 50

	licensingHighMin   = 1.00
	licensingMediumMin = 0.25
)

// Breakdown retains every stage factor verbatim so the estimate is
// reproducible from its parts: estimated value (before ceilings) equals
// BaseValue x ActorMultiplier x CharacteristicMultiplier x MarketMultiplier
// x ConfidenceFactor x RiskFactor.
type Breakdown struct {
	// BaseValue is the content-type base rate plus the actor base value,
	// before the actor multiplier is applied.
	BaseValue float64 `json:"base_value"`

	ActorMultiplier float64 `json:"actor_multiplier"`

	// CharacteristicMultiplier folds the per-tag multipliers together with
	// the age-bucket and length-bucket multipliers.
	CharacteristicMultiplier float64 `json:"characteristic_multiplier"`

	MarketMultiplier float64 `json:"market_multiplier"`
	ConfidenceFactor float64 `json:"confidence_factor"`
	RiskFactor       float64 `json:"risk_factor"`
}

// ValuationResult is the priced outcome for one (classification, features)
// pair.
type ValuationResult struct {
	// EstimatedValue is in currency units, rounded half-up to 2 decimals,
	// always within the global band and under the ceilings in effect.
	EstimatedValue decimal.Decimal `json:"estimated_value"`

	Breakdown          Breakdown          `json:"breakdown"`
	LicensingPotential LicensingPotential `json:"licensing_potential"`
	MarketContext      string             `json:"market_context"`
}

// Engine prices accesses against an immutable rate-table snapshot. It is
// stateless beyond the tables and safe for concurrent use; callers swap in a
// new Engine when tables reload.
type Engine struct {
	tables RateTables
}

// NewEngine constructs an Engine over the given tables.
func NewEngine(tables RateTables) *Engine {
	return &Engine{tables: tables}
}

// Tables returns the engine's rate-table snapshot.
func (e *Engine) Tables() RateTables {
	return e.tables
}

// Price converts a classification and a feature bundle into a bounded
// monetary estimate. It is a pure, total function: every lookup has a
// default and missing numeric inputs are substituted (confidence 50, word
// count 500, quality 50), so it never fails.
//
// Stage order is part of the contract. The raw multiplicative estimate is
// clamped to the global band first, then capped by the joint content-type
// and length-bucket ceiling, then by the quality ceiling. Swapping the
// ceiling order would change which cap binds for borderline inputs.
func (e *Engine) Price(cls detection.ClassificationResult, features content.FeatureBundle) ValuationResult {
	wordCount := features.WordCount
	if wordCount <= 0 {
		wordCount = defaultWordCount
	}
	quality := features.QualityScore
	if quality <= 0 {
		quality = defaultQuality
	}
	confidence := cls.Confidence
	if confidence <= 0 {
		confidence = defaultConfidence
	}
	if confidence > 100 {
		confidence = 100
	}

	actor := e.tables.Actor(cls.ActorName)
	lengthBucket := e.tables.LengthBucketFor(wordCount)

	charMult := 1.0
	for _, tag := range features.Characteristics {
		charMult *= e.tables.CharacteristicMultiplier(tag)
	}
	charMult *= e.tables.AgeMultiplier(features.PublishAgeDays)
	charMult *= lengthBucket.Multiplier

	riskFactor := e.tables.RiskFactor(cls.RiskLevel)
	if cls.Commercial {
		riskFactor *= e.tables.CommercialMultiplier
	}

	breakdown := Breakdown{
		BaseValue:                e.tables.BaseRate(features.ContentType) + actor.BaseValue,
		ActorMultiplier:          actor.Multiplier,
		CharacteristicMultiplier: charMult,
		MarketMultiplier:         e.tables.MarketMultiplier(),
		ConfidenceFactor:         float64(confidence) / 100,
		RiskFactor:               riskFactor,
	}

	raw := breakdown.BaseValue *
		breakdown.ActorMultiplier *
		breakdown.CharacteristicMultiplier *
		breakdown.MarketMultiplier *
		breakdown.ConfidenceFactor *
		breakdown.RiskFactor

	if raw < e.tables.MinValue {
		raw = e.tables.MinValue
	}
	if raw > e.tables.MaxValue {
		raw = e.tables.MaxValue
	}

	if ceiling := e.tables.TypeCeiling(features.ContentType, lengthBucket.Name); raw > ceiling {
		raw = ceiling
	}

	if qualityCap, capped := e.tables.QualityCap(quality); capped && raw > qualityCap {
		raw = qualityCap
	}

	value := decimal.NewFromFloat(raw).Round(2)

	return ValuationResult{
		EstimatedValue:     value,
		Breakdown:          breakdown,
		LicensingPotential: licensingPotential(value, cls.Commercial),
		MarketContext:      e.tables.MarketContext,
	}
}

func licensingPotential(value decimal.Decimal, commercial bool) LicensingPotential {
	switch {
	case commercial && value.GreaterThanOrEqual(decimal.NewFromFloat(licensingHighMin)):
		return LicensingHigh
	case value.GreaterThanOrEqual(decimal.NewFromFloat(licensingMediumMin)):
		return LicensingMedium
	default:
		return LicensingLow
	}
}
