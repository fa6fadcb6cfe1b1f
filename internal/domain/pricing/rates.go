// Package pricing converts a classification result and a feature bundle into
// a bounded monetary estimate through a fixed stage pipeline over immutable
// rate tables. Every table lookup is total: unknown keys resolve to explicit
// default entries, so pricing never fails for missing or out-of-range input.
package pricing

import (
	"sort"

	"github.com/crawlmeter/crawlmeter/internal/domain/content"
	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

// DefaultActorKey is the actor-rate entry applied when the actor is unknown.
const DefaultActorKey = "default"

// Length bucket names, used as keys into the content-type ceiling tables.
const (
	BucketShort         = "short"
	BucketMedium        = "medium"
	BucketLong          = "long"
	BucketComprehensive = "comprehensive"
)

// ActorRate is the per-actor pricing entry.
type ActorRate struct {
	Multiplier float64 `yaml:"multiplier"`
	BaseValue  float64 `yaml:"base_value"`
}

// AgeBucket maps a publish-age range to a decay multiplier. Buckets are
// evaluated in order; the first bucket whose MaxDays is at or above the age
// applies. MaxDays < 0 marks the open-ended last bucket.
type AgeBucket struct {
	MaxDays    int     `yaml:"max_days"`
	Multiplier float64 `yaml:"multiplier"`
}

// LengthBucket maps a word-count range to a name and multiplier. Buckets are
// evaluated in order; the first bucket whose MaxWords is at or above the
// count applies. MaxWords < 0 marks the open-ended last bucket.
type LengthBucket struct {
	Name       string  `yaml:"name"`
	MaxWords   int     `yaml:"max_words"`
	Multiplier float64 `yaml:"multiplier"`
}

// QualityCeiling caps the final value for quality scores below Threshold.
// Ceilings are evaluated in ascending threshold order; scores at or above
// every threshold are uncapped at this stage.
type QualityCeiling struct {
	Threshold int     `yaml:"threshold"`
	Cap       float64 `yaml:"cap"`
}

// RateTables is the full static pricing configuration. Constructed once at
// startup (DefaultRateTables or YAML) and never mutated; the engine holds it
// by value.
type RateTables struct {
	// MinValue and MaxValue bound every estimate (the global band).
	MinValue float64 `yaml:"min_value"`
	MaxValue float64 `yaml:"max_value"`

	// ContentTypeRates are per-type base rates; FallbackBaseRate applies to
	// types without an entry.
	ContentTypeRates map[content.ContentType]float64 `yaml:"content_type_rates"`
	FallbackBaseRate float64                         `yaml:"fallback_base_rate"`

	// ActorRates must contain a DefaultActorKey entry.
	ActorRates map[string]ActorRate `yaml:"actor_rates"`

	// CharacteristicMultipliers are per-tag value multipliers; tags without
	// an entry contribute a neutral 1.0.
	CharacteristicMultipliers map[string]float64 `yaml:"characteristic_multipliers"`

	AgeBuckets    []AgeBucket    `yaml:"age_buckets"`
	LengthBuckets []LengthBucket `yaml:"length_buckets"`

	// MarketFactors are combined multiplicatively, independent of input.
	MarketFactors map[string]float64 `yaml:"market_factors"`

	// MarketContext is the descriptive label attached to every valuation.
	MarketContext string `yaml:"market_context"`

	RiskFactors          map[detection.RiskLevel]float64 `yaml:"risk_factors"`
	CommercialMultiplier float64                         `yaml:"commercial_multiplier"`

	// ContentTypeCeilings cap the estimate jointly by content type and
	// length bucket name. Missing entries fall back to UnknownTypeCeiling.
	ContentTypeCeilings map[content.ContentType]map[string]float64 `yaml:"content_type_ceilings"`
	UnknownTypeCeiling  float64                                    `yaml:"unknown_type_ceiling"`

	QualityCeilings []QualityCeiling `yaml:"quality_ceilings"`
}

// DefaultRateTables returns the built-in pricing configuration.
func DefaultRateTables() RateTables {
	return RateTables{
		MinValue: 0.001,
		MaxValue: 25.00,

		ContentTypeRates: map[content.ContentType]float64{
			content.TypeArticle: 0.05,
			content.TypeImage:   0.02,
			content.TypeVideo:   0.10,
			content.TypeAudio:   0.04,
			content.TypeCode:    0.06,
			content.TypeData:    0.03,
		},
		FallbackBaseRate: 0.01,

		ActorRates: map[string]ActorRate{
			"OpenAI":           {Multiplier: 2.0, BaseValue: 0.15},
			"Anthropic":        {Multiplier: 1.9, BaseValue: 0.14},
			"Google AI":        {Multiplier: 1.8, BaseValue: 0.12},
			"Common Crawl":     {Multiplier: 1.5, BaseValue: 0.08},
			"ByteDance":        {Multiplier: 1.5, BaseValue: 0.08},
			"Perplexity":       {Multiplier: 1.7, BaseValue: 0.10},
			"Cohere":           {Multiplier: 1.5, BaseValue: 0.08},
			"Meta AI":          {Multiplier: 1.7, BaseValue: 0.10},
			"Amazon":           {Multiplier: 1.3, BaseValue: 0.05},
			"Apple AI":         {Multiplier: 1.5, BaseValue: 0.08},
			"Diffbot":          {Multiplier: 1.4, BaseValue: 0.06},
			"Webz.io":          {Multiplier: 1.4, BaseValue: 0.06},
			"You.com":          {Multiplier: 1.4, BaseValue: 0.06},
			"Internet Archive": {Multiplier: 0.5, BaseValue: 0.01},
			"Ahrefs":           {Multiplier: 1.1, BaseValue: 0.03},
			"Semrush":          {Multiplier: 1.1, BaseValue: 0.03},
			"Google":           {Multiplier: 0.9, BaseValue: 0.02},
			"Bing":             {Multiplier: 0.9, BaseValue: 0.02},
			"Apple":            {Multiplier: 0.9, BaseValue: 0.02},
			"DuckDuckGo":       {Multiplier: 0.8, BaseValue: 0.01},
			"Yandex":           {Multiplier: 0.8, BaseValue: 0.01},
			"Baidu":            {Multiplier: 0.8, BaseValue: 0.01},
			DefaultActorKey:    {Multiplier: 1.0, BaseValue: 0.01},
		},

		CharacteristicMultipliers: map[string]float64{
			content.CharOriginalResearch: 1.40,
			content.CharExclusiveContent: 1.30,
			content.CharTechnicalDepth:   1.25,
			content.CharMultimediaRich:   1.15,
		},

		AgeBuckets: []AgeBucket{
			{MaxDays: 30, Multiplier: 1.00},
			{MaxDays: 90, Multiplier: 0.90},
			{MaxDays: 365, Multiplier: 0.75},
			{MaxDays: -1, Multiplier: 0.60},
		},

		LengthBuckets: []LengthBucket{
			{Name: BucketShort, MaxWords: 499, Multiplier: 0.70},
			{Name: BucketMedium, MaxWords: 2000, Multiplier: 1.00},
			{Name: BucketLong, MaxWords: 5000, Multiplier: 1.20},
			{Name: BucketComprehensive, MaxWords: -1, Multiplier: 1.35},
		},

		MarketFactors: map[string]float64{
			"inflation":  1.02,
			"ai_demand":  1.15,
			"scarcity":   1.05,
			"legal_risk": 0.95,
		},
		MarketContext: "AI training demand elevated; licensing market nascent",

		RiskFactors: map[detection.RiskLevel]float64{
			detection.RiskLow:    0.80,
			detection.RiskMedium: 1.00,
			detection.RiskHigh:   1.30,
		},
		CommercialMultiplier: 1.25,

		ContentTypeCeilings: map[content.ContentType]map[string]float64{
			content.TypeArticle: {
				BucketShort:         0.50,
				BucketMedium:        1.00,
				BucketLong:          1.25,
				BucketComprehensive: 1.50,
			},
			content.TypeImage: {
				BucketShort:         0.20,
				BucketMedium:        0.20,
				BucketLong:          0.20,
				BucketComprehensive: 0.20,
			},
			content.TypeVideo: {
				BucketShort:         2.00,
				BucketMedium:        2.00,
				BucketLong:          2.00,
				BucketComprehensive: 2.00,
			},
			content.TypeAudio: {
				BucketShort:         0.80,
				BucketMedium:        0.80,
				BucketLong:          0.80,
				BucketComprehensive: 0.80,
			},
			content.TypeCode: {
				BucketShort:         0.60,
				BucketMedium:        1.00,
				BucketLong:          1.20,
				BucketComprehensive: 1.40,
			},
			content.TypeData: {
				BucketShort:         0.75,
				BucketMedium:        0.75,
				BucketLong:          0.75,
				BucketComprehensive: 0.75,
			},
		},
		UnknownTypeCeiling: 0.25,

		QualityCeilings: []QualityCeiling{
			{Threshold: 40, Cap: 0.25},
			{Threshold: 60, Cap: 1.50},
		},
	}
}

// BaseRate returns the content-type base rate, or the fallback rate for
// types without an entry.
func (t RateTables) BaseRate(ct content.ContentType) float64 {
	if r, ok := t.ContentTypeRates[ct]; ok {
		return r
	}
	return t.FallbackBaseRate
}

// Actor returns the rate entry for the named actor, or the default entry for
// unknown or empty names.
func (t RateTables) Actor(name string) ActorRate {
	if r, ok := t.ActorRates[name]; ok {
		return r
	}
	return t.ActorRates[DefaultActorKey]
}

// CharacteristicMultiplier returns the multiplier for a tag, neutral 1.0 for
// tags without an entry.
func (t RateTables) CharacteristicMultiplier(tag string) float64 {
	if m, ok := t.CharacteristicMultipliers[tag]; ok {
		return m
	}
	return 1.0
}

// AgeMultiplier maps a publish age in days to its decay multiplier. A nil
// age contributes a neutral 1.0.
func (t RateTables) AgeMultiplier(ageDays *int) float64 {
	if ageDays == nil {
		return 1.0
	}
	for _, b := range t.AgeBuckets {
		if b.MaxDays < 0 || *ageDays <= b.MaxDays {
			return b.Multiplier
		}
	}
	return 1.0
}

// LengthBucketFor maps a word count to its bucket. The final open-ended
// bucket catches everything above the last bound.
func (t RateTables) LengthBucketFor(wordCount int) LengthBucket {
	for _, b := range t.LengthBuckets {
		if b.MaxWords < 0 || wordCount <= b.MaxWords {
			return b
		}
	}
	return LengthBucket{Name: BucketMedium, Multiplier: 1.0}
}

// MarketMultiplier is the product of every market factor, computed in sorted
// key order so the result is reproducible.
func (t RateTables) MarketMultiplier() float64 {
	keys := make([]string, 0, len(t.MarketFactors))
	for k := range t.MarketFactors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	product := 1.0
	for _, k := range keys {
		product *= t.MarketFactors[k]
	}
	return product
}

// RiskFactor returns the multiplier for a risk level, neutral 1.0 for
// unknown levels.
func (t RateTables) RiskFactor(level detection.RiskLevel) float64 {
	if f, ok := t.RiskFactors[level]; ok {
		return f
	}
	return 1.0
}

// TypeCeiling returns the joint (content type, length bucket) ceiling,
// falling back to UnknownTypeCeiling when either key is missing.
func (t RateTables) TypeCeiling(ct content.ContentType, bucketName string) float64 {
	if buckets, ok := t.ContentTypeCeilings[ct]; ok {
		if ceiling, ok := buckets[bucketName]; ok {
			return ceiling
		}
	}
	return t.UnknownTypeCeiling
}

// QualityCap returns the ceiling in effect for a quality score, or (0,
// false) when no ceiling applies. Ceilings are checked in ascending
// threshold order so the tightest applicable cap wins.
func (t RateTables) QualityCap(quality int) (float64, bool) {
	for _, c := range t.QualityCeilings {
		if quality < c.Threshold {
			return c.Cap, true
		}
	}
	return 0, false
}

// Validate checks the structural invariants that keep every lookup total.
func (t RateTables) Validate() error {
	if t.MinValue < 0 || t.MaxValue <= t.MinValue {
		return errors.New(errors.ErrCodeRateTableInvalid, "value band must satisfy 0 <= min < max")
	}
	if t.FallbackBaseRate <= 0 {
		return errors.New(errors.ErrCodeRateTableInvalid, "fallback base rate must be positive")
	}
	if _, ok := t.ActorRates[DefaultActorKey]; !ok {
		return errors.New(errors.ErrCodeRateTableInvalid, "actor_rates must contain a default entry")
	}
	if len(t.LengthBuckets) == 0 || t.LengthBuckets[len(t.LengthBuckets)-1].MaxWords >= 0 {
		return errors.New(errors.ErrCodeRateTableInvalid, "length_buckets must end with an open-ended bucket")
	}
	if len(t.AgeBuckets) == 0 || t.AgeBuckets[len(t.AgeBuckets)-1].MaxDays >= 0 {
		return errors.New(errors.ErrCodeRateTableInvalid, "age_buckets must end with an open-ended bucket")
	}
	if t.CommercialMultiplier <= 0 {
		return errors.New(errors.ErrCodeRateTableInvalid, "commercial_multiplier must be positive")
	}
	for i := 1; i < len(t.QualityCeilings); i++ {
		if t.QualityCeilings[i].Threshold <= t.QualityCeilings[i-1].Threshold {
			return errors.New(errors.ErrCodeRateTableInvalid, "quality_ceilings must have ascending thresholds")
		}
	}
	return nil
}
