// Package content derives structured feature bundles from published content.
// Scoring is a pure function over the supplied text; when no raw content is
// available a locator-only fallback produces a best-effort bundle flagged as
// low confidence instead of failing.
package content

// ContentType is the coarse media classification of a piece of content.
// "unknown" is a valid terminal value, distinct from a missing field.
type ContentType string

const (
	TypeArticle ContentType = "article"
	TypeImage   ContentType = "image"
	TypeVideo   ContentType = "video"
	TypeAudio   ContentType = "audio"
	TypeCode    ContentType = "code"
	TypeData    ContentType = "data"
	TypeUnknown ContentType = "unknown"
)

// TechnicalDepth is the ordered tier derived from the technical score.
type TechnicalDepth string

const (
	DepthBasic        TechnicalDepth = "basic"
	DepthIntermediate TechnicalDepth = "intermediate"
	DepthAdvanced     TechnicalDepth = "advanced"
	DepthExpert       TechnicalDepth = "expert"
)

// Characteristic tags detectable on content. Each tag carries a value
// multiplier in the pricing rate tables.
const (
	CharOriginalResearch = "original_research"
	CharExclusiveContent = "exclusive_content"
	CharTechnicalDepth   = "technical_depth"
	CharMultimediaRich   = "multimedia_rich"
)

// FeatureBundle is the derived feature set for one content locator. All
// numeric fields carry documented defaults so downstream pricing is total.
type FeatureBundle struct {
	ContentType ContentType `json:"content_type"`

	// WordCount is estimated from the body, or defaulted when unknown.
	WordCount int `json:"word_count"`

	// QualityScore is always clamped to [0,100].
	QualityScore int `json:"quality_score"`

	TechnicalDepth TechnicalDepth `json:"technical_depth"`

	// Characteristics is the ordered set of detected tags. A tag appears at
	// most once no matter how many of its patterns matched.
	Characteristics []string `json:"characteristics,omitempty"`

	// PublishAgeDays is nil when the publish date is unknown. It is supplied
	// by the resolver rather than computed from wall clock so extraction
	// stays deterministic.
	PublishAgeDays *int `json:"publish_age_days,omitempty"`

	// LowConfidence marks bundles derived from the locator alone, without
	// raw content.
	LowConfidence bool `json:"low_confidence"`
}

// HasCharacteristic reports whether the bundle carries the given tag.
func (b FeatureBundle) HasCharacteristic(tag string) bool {
	for _, c := range b.Characteristics {
		if c == tag {
			return true
		}
	}
	return false
}
