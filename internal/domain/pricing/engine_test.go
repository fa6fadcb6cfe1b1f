package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlmeter/crawlmeter/internal/domain/content"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
)

func commercialCrawler(actor string) detection.ClassificationResult {
	return detection.ClassificationResult{
		IsBot:      true,
		Confidence: 95,
		ActorName:  actor,
		RiskLevel:  detection.RiskHigh,
		Commercial: true,
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestPrice_CommercialActorLongTechnicalArticle(t *testing.T) {
	e := NewEngine(DefaultRateTables())

	features := content.FeatureBundle{
		ContentType:     content.TypeArticle,
		WordCount:       5200,
		QualityScore:    90,
		Characteristics: []string{content.CharOriginalResearch, content.CharTechnicalDepth},
	}

	res := e.Price(commercialCrawler("OpenAI"), features)

	// The multiplicative estimate (~1.71) exceeds the comprehensive-article
	// ceiling, so the ceiling binds.
	assert.True(t, res.EstimatedValue.Equal(mustDecimal(t, "1.5")),
		"got %s", res.EstimatedValue)
	assert.Equal(t, LicensingHigh, res.LicensingPotential)

	assert.Equal(t, 0.20, res.Breakdown.BaseValue)
	assert.Equal(t, 2.0, res.Breakdown.ActorMultiplier)
	assert.InDelta(t, 2.3625, res.Breakdown.CharacteristicMultiplier, 1e-9)
	assert.InDelta(t, 1.17, res.Breakdown.MarketMultiplier, 0.01)
	assert.Equal(t, 0.95, res.Breakdown.ConfidenceFactor)
	assert.InDelta(t, 1.625, res.Breakdown.RiskFactor, 1e-9)
	assert.NotEmpty(t, res.MarketContext)
}

func TestPrice_UnknownActorShortPage(t *testing.T) {
	e := NewEngine(DefaultRateTables())

	cls := detection.ClassificationResult{RiskLevel: detection.RiskLow}
	features := content.FeatureBundle{ContentType: content.TypeArticle, WordCount: 200}

	res := e.Price(cls, features)

	assert.True(t, res.EstimatedValue.Equal(mustDecimal(t, "0.02")),
		"got %s", res.EstimatedValue)
	assert.Equal(t, LicensingLow, res.LicensingPotential)
	// Zero confidence is treated as missing and defaulted.
	assert.Equal(t, 0.5, res.Breakdown.ConfidenceFactor)
	assert.Equal(t, 0.8, res.Breakdown.RiskFactor)
}

func TestPrice_ImageCeilingBindsRegardlessOfActor(t *testing.T) {
	e := NewEngine(DefaultRateTables())

	features := content.FeatureBundle{ContentType: content.TypeImage, LowConfidence: true}
	res := e.Price(commercialCrawler("OpenAI"), features)

	assert.True(t, res.EstimatedValue.Equal(mustDecimal(t, "0.2")),
		"got %s", res.EstimatedValue)
	assert.Equal(t, LicensingLow, res.LicensingPotential)
}

func TestPrice_QualityCeilings(t *testing.T) {
	e := NewEngine(DefaultRateTables())

	features := content.FeatureBundle{
		ContentType:     content.TypeArticle,
		WordCount:       5200,
		Characteristics: []string{content.CharOriginalResearch, content.CharTechnicalDepth},
	}

	t.Run("low quality caps at 0.25", func(t *testing.T) {
		f := features
		f.QualityScore = 30
		res := e.Price(commercialCrawler("OpenAI"), f)
		assert.True(t, res.EstimatedValue.Equal(mustDecimal(t, "0.25")), "got %s", res.EstimatedValue)
		assert.Equal(t, LicensingMedium, res.LicensingPotential)
	})

	t.Run("mid quality caps at 1.50", func(t *testing.T) {
		f := features
		f.QualityScore = 55
		res := e.Price(commercialCrawler("OpenAI"), f)
		assert.True(t, res.EstimatedValue.Equal(mustDecimal(t, "1.5")), "got %s", res.EstimatedValue)
	})

	t.Run("high quality uncapped at this stage", func(t *testing.T) {
		f := features
		f.QualityScore = 90
		res := e.Price(commercialCrawler("OpenAI"), f)
		assert.True(t, res.EstimatedValue.Equal(mustDecimal(t, "1.5")), "got %s", res.EstimatedValue)
	})
}

func TestPrice_GlobalBandClampsBeforeCeilings(t *testing.T) {
	tables := DefaultRateTables()
	tables.MaxValue = 0.10
	e := NewEngine(tables)

	features := content.FeatureBundle{
		ContentType:     content.TypeArticle,
		WordCount:       5200,
		QualityScore:    90,
		Characteristics: []string{content.CharOriginalResearch},
	}
	res := e.Price(commercialCrawler("OpenAI"), features)
	assert.True(t, res.EstimatedValue.Equal(mustDecimal(t, "0.1")), "got %s", res.EstimatedValue)
}

func TestPrice_DefaultsForZeroValueInputs(t *testing.T) {
	e := NewEngine(DefaultRateTables())

	res := e.Price(detection.ClassificationResult{}, content.FeatureBundle{})

	// Unknown content type, default actor, defaulted confidence, medium
	// length bucket for the defaulted 500-word count.
	assert.Equal(t, 0.02, res.Breakdown.BaseValue)
	assert.Equal(t, 1.0, res.Breakdown.ActorMultiplier)
	assert.Equal(t, 1.0, res.Breakdown.CharacteristicMultiplier)
	assert.Equal(t, 0.5, res.Breakdown.ConfidenceFactor)
	assert.Equal(t, 1.0, res.Breakdown.RiskFactor)
	assert.True(t, res.EstimatedValue.Equal(mustDecimal(t, "0.01")), "got %s", res.EstimatedValue)
}

func TestPrice_ConfidenceMonotonicity(t *testing.T) {
	e := NewEngine(DefaultRateTables())
	features := content.FeatureBundle{ContentType: content.TypeArticle, WordCount: 1200, QualityScore: 75}

	prev := decimal.Zero
	for conf := 50; conf <= 100; conf += 5 {
		cls := detection.ClassificationResult{
			IsBot: true, Confidence: conf, RiskLevel: detection.RiskMedium,
		}
		v := e.Price(cls, features).EstimatedValue
		assert.True(t, v.GreaterThanOrEqual(prev), "confidence %d lowered the value", conf)
		prev = v
	}
}

func TestPrice_RiskMonotonicity(t *testing.T) {
	e := NewEngine(DefaultRateTables())
	features := content.FeatureBundle{ContentType: content.TypeArticle, WordCount: 1200, QualityScore: 75}

	prev := 0.0
	for _, level := range []detection.RiskLevel{detection.RiskLow, detection.RiskMedium, detection.RiskHigh} {
		cls := detection.ClassificationResult{IsBot: true, Confidence: 80, RiskLevel: level}
		rf := e.Price(cls, features).Breakdown.RiskFactor
		assert.GreaterOrEqual(t, rf, prev, "risk %s lowered the factor", level)
		prev = rf
	}
}

func TestPrice_BoundsHoldAcrossInputs(t *testing.T) {
	tables := DefaultRateTables()
	e := NewEngine(tables)

	min := decimal.Zero
	max := decimal.NewFromFloat(tables.MaxValue)

	types := []content.ContentType{
		content.TypeArticle, content.TypeImage, content.TypeVideo,
		content.TypeAudio, content.TypeCode, content.TypeData, content.TypeUnknown,
	}
	actors := []string{"OpenAI", "Google", "", "NoSuchActor"}
	wordCounts := []int{0, 200, 1500, 5200}
	qualities := []int{0, 30, 55, 95}

	for _, ct := range types {
		for _, actor := range actors {
			for _, wc := range wordCounts {
				for _, q := range qualities {
					cls := detection.ClassificationResult{
						IsBot: true, Confidence: 95, ActorName: actor,
						RiskLevel: detection.RiskHigh, Commercial: true,
					}
					features := content.FeatureBundle{
						ContentType: ct, WordCount: wc, QualityScore: q,
						Characteristics: []string{content.CharOriginalResearch, content.CharExclusiveContent},
					}
					v := e.Price(cls, features).EstimatedValue
					assert.True(t, v.GreaterThanOrEqual(min), "%s %s wc=%d q=%d below band", ct, actor, wc, q)
					assert.True(t, v.LessThanOrEqual(max), "%s %s wc=%d q=%d above band", ct, actor, wc, q)

					effectiveWC := wc
					if effectiveWC <= 0 {
						effectiveWC = 500
					}
					ceiling := decimal.NewFromFloat(tables.TypeCeiling(ct, tables.LengthBucketFor(effectiveWC).Name))
					assert.True(t, v.LessThanOrEqual(ceiling.Round(2)),
						"%s %s wc=%d q=%d exceeds type ceiling", ct, actor, wc, q)
				}
			}
		}
	}
}

func TestPrice_Deterministic(t *testing.T) {
	e := NewEngine(DefaultRateTables())
	cls := commercialCrawler("Anthropic")
	features := content.FeatureBundle{
		ContentType: content.TypeArticle, WordCount: 3000, QualityScore: 80,
		Characteristics: []string{content.CharTechnicalDepth},
	}

	first := e.Price(cls, features)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Price(cls, features))
	}
}
