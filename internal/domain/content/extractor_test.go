package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/crawlmeter/crawlmeter/pkg/errors"
)

type mapCache struct {
	entries map[string]FeatureBundle
	getErr  error
	setErr  error
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]FeatureBundle{}}
}

func (c *mapCache) Get(_ context.Context, key string) (*FeatureBundle, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if b, ok := c.entries[key]; ok {
		return &b, nil
	}
	return nil, nil
}

func (c *mapCache) Set(_ context.Context, key string, bundle FeatureBundle) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = bundle
	return nil
}

func staticResolver(raw *RawContent, err error) ContentResolver {
	return ResolverFunc(func(context.Context, string) (*RawContent, error) {
		return raw, err
	})
}

func TestExtract_LocatorOnly(t *testing.T) {
	e := NewExtractor(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		locator     string
		contentType ContentType
		tags        []string
	}{
		{"png extension", "https://example.com/photos/cat.png", TypeImage, nil},
		{"video extension", "https://example.com/clips/demo.mp4", TypeVideo, nil},
		{"code extension", "https://example.com/src/main.go", TypeCode, nil},
		{"research segment", "https://example.com/research/llm-study", TypeArticle, []string{CharOriginalResearch}},
		{"blog segment", "https://example.com/blog/2026/post", TypeArticle, nil},
		{"docs segment", "/docs/api/reference", TypeArticle, []string{CharTechnicalDepth}},
		{"api segment", "https://example.com/api/v1/users", TypeData, nil},
		{"extension beats segment", "https://example.com/api/v1/users.json", TypeData, nil},
		{"no rules match", "gibberish", TypeUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := e.Extract(ctx, tt.locator, ExtractOptions{})
			require.NoError(t, err)
			assert.True(t, bundle.LowConfidence)
			assert.Equal(t, tt.contentType, bundle.ContentType)
			assert.Equal(t, tt.tags, bundle.Characteristics)
			assert.Equal(t, defaultWordCount, bundle.WordCount)
			assert.Equal(t, defaultQualityScore, bundle.QualityScore)
			assert.Equal(t, DepthBasic, bundle.TechnicalDepth)
		})
	}
}

func TestExtract_ResolvedContent(t *testing.T) {
	age := 45
	raw := &RawContent{
		Title:          "Benchmark Research",
		Body:           "We conducted a benchmark of the algorithm.\n## Results\n- faster\n- smaller",
		PublishAgeDays: &age,
	}
	e := NewExtractor(staticResolver(raw, nil), nil, nil)

	bundle, err := e.Extract(context.Background(), "https://example.com/blog/benchmarks", ExtractOptions{})
	require.NoError(t, err)

	assert.False(t, bundle.LowConfidence)
	assert.Equal(t, TypeArticle, bundle.ContentType)
	assert.Equal(t, countWords(raw.Body), bundle.WordCount)
	require.NotNil(t, bundle.PublishAgeDays)
	assert.Equal(t, 45, *bundle.PublishAgeDays)
	assert.Contains(t, bundle.Characteristics, CharOriginalResearch)
	assert.Contains(t, bundle.Characteristics, CharTechnicalDepth)
	// base 50 + research "research" 8 + technical "algorithm"/"benchmark" 8 +
	// heading 5 + list 3.
	assert.Equal(t, 74, bundle.QualityScore)
}

func TestExtract_ResolvedKeepsExtensionType(t *testing.T) {
	raw := &RawContent{Title: "Chart", Body: "a stored caption"}
	e := NewExtractor(staticResolver(raw, nil), nil, nil)

	bundle, err := e.Extract(context.Background(), "https://example.com/media/chart.png", ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, TypeImage, bundle.ContentType)
	assert.False(t, bundle.LowConfidence)
}

func TestExtract_ResolverMissOrFailureFallsBack(t *testing.T) {
	ctx := context.Background()

	for name, resolver := range map[string]ContentResolver{
		"nil raw":        staticResolver(nil, nil),
		"resolver error": staticResolver(nil, errors.New("store down")),
	} {
		t.Run(name, func(t *testing.T) {
			e := NewExtractor(resolver, nil, nil)
			bundle, err := e.Extract(ctx, "https://example.com/research/paper", ExtractOptions{})
			require.NoError(t, err)
			assert.True(t, bundle.LowConfidence)
			assert.Equal(t, TypeArticle, bundle.ContentType)
		})
	}
}

func TestExtract_CacheHitSkipsResolver(t *testing.T) {
	cache := newMapCache()
	locator := "https://example.com/blog/post"
	cached := FeatureBundle{ContentType: TypeArticle, WordCount: 900, QualityScore: 80}
	cache.entries[CacheKey(locator)] = cached

	calls := 0
	resolver := ResolverFunc(func(context.Context, string) (*RawContent, error) {
		calls++
		return &RawContent{Body: "fresh"}, nil
	})

	e := NewExtractor(resolver, cache, nil)
	bundle, err := e.Extract(context.Background(), locator, ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, cached, bundle)
	assert.Zero(t, calls)
	assert.Zero(t, cache.sets)
}

func TestExtract_ForceRefreshRecomputes(t *testing.T) {
	cache := newMapCache()
	locator := "https://example.com/blog/post"
	cache.entries[CacheKey(locator)] = FeatureBundle{ContentType: TypeUnknown, QualityScore: 1}

	e := NewExtractor(staticResolver(&RawContent{Body: "fresh body text"}, nil), cache, nil)
	bundle, err := e.Extract(context.Background(), locator, ExtractOptions{ForceRefresh: true})
	require.NoError(t, err)

	assert.Equal(t, TypeArticle, bundle.ContentType)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, bundle, cache.entries[CacheKey(locator)])
}

func TestExtract_CacheMissComputesAndStores(t *testing.T) {
	cache := newMapCache()
	e := NewExtractor(nil, cache, nil)

	bundle, err := e.Extract(context.Background(), "https://example.com/docs/guide", ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	again, err := e.Extract(context.Background(), "https://example.com/docs/guide", ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, bundle, again)
	assert.Equal(t, 1, cache.sets)
}

func TestExtract_CacheReadErrorSurfaces(t *testing.T) {
	cache := newMapCache()
	cache.getErr = errors.New("redis down")
	e := NewExtractor(nil, cache, nil)

	_, err := e.Extract(context.Background(), "https://example.com/x", ExtractOptions{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCacheError, apperrors.GetCode(err))
}

func TestExtract_CacheWriteErrorIgnored(t *testing.T) {
	cache := newMapCache()
	cache.setErr = errors.New("redis down")
	e := NewExtractor(nil, cache, nil)

	bundle, err := e.Extract(context.Background(), "https://example.com/blog/a", ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, TypeArticle, bundle.ContentType)
}

func TestExtract_Deterministic(t *testing.T) {
	raw := &RawContent{Title: "T", Body: "research body with an algorithm"}
	e := NewExtractor(staticResolver(raw, nil), nil, nil)
	ctx := context.Background()

	a, err := e.Extract(ctx, "https://example.com/blog/x", ExtractOptions{})
	require.NoError(t, err)
	b, err := e.Extract(ctx, "https://example.com/blog/x", ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCacheKey(t *testing.T) {
	assert.Len(t, CacheKey("https://example.com/a"), 64)
	assert.Equal(t, CacheKey("x"), CacheKey("x"))
	assert.NotEqual(t, CacheKey("x"), CacheKey("y"))
}
