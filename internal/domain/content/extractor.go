package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"strings"

	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

// Defaults applied when a signal cannot be derived from the input.
const (
	defaultWordCount    = 500
	defaultQualityScore = 50
)

// BundleCache stores computed feature bundles keyed by locator hash. Get
// reports a miss as (nil, nil). Implementations must be safe for concurrent
// use; concurrent misses for the same locator may recompute redundantly
// since extraction is pure.
type BundleCache interface {
	Get(ctx context.Context, key string) (*FeatureBundle, error)
	Set(ctx context.Context, key string, bundle FeatureBundle) error
}

// ExtractOptions adjusts a single Extract call.
type ExtractOptions struct {
	// ForceRefresh bypasses any cached bundle and recomputes. The fresh
	// result still replaces the cached value.
	ForceRefresh bool
}

// CacheKey derives the cache key for a locator: the hex SHA-256 of the
// locator string.
func CacheKey(locator string) string {
	sum := sha256.Sum256([]byte(locator))
	return hex.EncodeToString(sum[:])
}

// Extractor derives feature bundles from content locators. The resolver and
// cache are both optional; without a resolver every bundle takes the
// locator-only path, and without a cache every call recomputes.
type Extractor struct {
	resolver ContentResolver
	cache    BundleCache
	logger   logging.Logger
}

// NewExtractor constructs an Extractor. resolver and cache may be nil.
func NewExtractor(resolver ContentResolver, cache BundleCache, logger logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Extractor{resolver: resolver, cache: cache, logger: logger.Named("content")}
}

// Extract resolves and scores the content behind locator. The scoring itself
// is total; the only error source is a failing cache read. A resolver failure
// or missing document degrades to the locator-only bundle with LowConfidence
// set, it is never surfaced as an error.
func (e *Extractor) Extract(ctx context.Context, locator string, opts ExtractOptions) (FeatureBundle, error) {
	key := CacheKey(locator)

	if e.cache != nil && !opts.ForceRefresh {
		cached, err := e.cache.Get(ctx, key)
		if err != nil {
			return FeatureBundle{}, errors.Wrap(err, errors.ErrCodeCacheError, "feature bundle cache read failed")
		}
		if cached != nil {
			return *cached, nil
		}
	}

	bundle := e.compute(ctx, locator)

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, bundle); err != nil {
			// A write failure only costs a recomputation next time.
			e.logger.Warn("feature bundle cache write failed",
				logging.String("locator", locator),
				logging.Err(err),
			)
		}
	}
	return bundle, nil
}

func (e *Extractor) compute(ctx context.Context, locator string) FeatureBundle {
	if e.resolver == nil {
		return e.fromLocator(locator)
	}

	raw, err := e.resolver.Resolve(ctx, locator)
	if err != nil {
		e.logger.Warn("content resolution failed, using locator-only features",
			logging.String("locator", locator),
			logging.Err(err),
		)
		return e.fromLocator(locator)
	}
	if raw == nil {
		return e.fromLocator(locator)
	}
	return e.fromRaw(locator, raw)
}

// fromRaw scores resolved content. The locator still decides the content
// type where its extension is conclusive (an image stays an image even when
// a caption body was stored for it).
func (e *Extractor) fromRaw(locator string, raw *RawContent) FeatureBundle {
	lowered := strings.ToLower(raw.Title + "\n" + raw.Body)

	contentType, locatorTags := classifyLocator(locator)
	if contentType == TypeUnknown {
		contentType = TypeArticle
	}

	wordCount := countWords(raw.Body)
	_, depth := scoreTechnicalDepth(lowered)

	return FeatureBundle{
		ContentType:     contentType,
		WordCount:       wordCount,
		QualityScore:    scoreQuality(lowered, wordCount),
		TechnicalDepth:  depth,
		Characteristics: mergeTags(locatorTags, detectCharacteristics(lowered)),
		PublishAgeDays:  raw.PublishAgeDays,
	}
}

// fromLocator is the fallback path when no raw content is available. It
// applies the fixed extension and path-segment rules and fills the remaining
// fields with documented defaults.
func (e *Extractor) fromLocator(locator string) FeatureBundle {
	contentType, tags := classifyLocator(locator)
	return FeatureBundle{
		ContentType:     contentType,
		WordCount:       defaultWordCount,
		QualityScore:    defaultQualityScore,
		TechnicalDepth:  DepthBasic,
		Characteristics: tags,
		LowConfidence:   true,
	}
}

// extensionTypes maps file extensions to content types.
var extensionTypes = map[string]ContentType{
	".png": TypeImage, ".jpg": TypeImage, ".jpeg": TypeImage,
	".gif": TypeImage, ".webp": TypeImage, ".svg": TypeImage,
	".mp4": TypeVideo, ".webm": TypeVideo, ".mov": TypeVideo,
	".mp3": TypeAudio, ".wav": TypeAudio, ".ogg": TypeAudio,
	".go": TypeCode, ".py": TypeCode, ".js": TypeCode, ".ts": TypeCode,
	".java": TypeCode, ".c": TypeCode, ".cpp": TypeCode, ".rs": TypeCode,
	".csv": TypeData, ".json": TypeData, ".xml": TypeData,
	".html": TypeArticle, ".htm": TypeArticle, ".md": TypeArticle,
}

// segmentRules maps path segments to a content type and optional tag. First
// matching segment wins for the type; tags from the matching segment only.
var segmentRules = []struct {
	segment     string
	contentType ContentType
	tag         string
}{
	{"research", TypeArticle, CharOriginalResearch},
	{"blog", TypeArticle, ""},
	{"news", TypeArticle, ""},
	{"article", TypeArticle, ""},
	{"articles", TypeArticle, ""},
	{"docs", TypeArticle, CharTechnicalDepth},
	{"documentation", TypeArticle, CharTechnicalDepth},
	{"api", TypeData, ""},
}

// classifyLocator resolves a content type and characteristic tags from the
// locator alone. Extension rules take precedence over path-segment rules;
// segment tags still apply either way.
func classifyLocator(locator string) (ContentType, []string) {
	p := locatorPath(locator)
	lowered := strings.ToLower(p)

	contentType := TypeUnknown
	if t, ok := extensionTypes[path.Ext(lowered)]; ok {
		contentType = t
	}

	var tags []string
	segments := strings.Split(strings.Trim(lowered, "/"), "/")
	for _, rule := range segmentRules {
		if !containsSegment(segments, rule.segment) {
			continue
		}
		if contentType == TypeUnknown {
			contentType = rule.contentType
		}
		if rule.tag != "" {
			tags = mergeTags(tags, []string{rule.tag})
		}
	}

	return contentType, tags
}

// locatorPath extracts the path portion of a locator, tolerating bare paths
// and malformed URLs.
func locatorPath(locator string) string {
	u, err := url.Parse(locator)
	if err != nil || u.Path == "" {
		return locator
	}
	return u.Path
}

func containsSegment(segments []string, want string) bool {
	for _, s := range segments {
		if s == want {
			return true
		}
	}
	return false
}

func mergeTags(base, extra []string) []string {
	out := base
	for _, t := range extra {
		seen := false
		for _, existing := range out {
			if existing == t {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, t)
		}
	}
	return out
}
