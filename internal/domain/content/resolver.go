package content

import "context"

// RawContent is the resolved form of a content locator: the stored title,
// body, and metadata the scoring functions operate on. PublishAgeDays is
// precomputed by the resolver against its own clock so that extraction never
// reads wall time.
type RawContent struct {
	Title          string
	Body           string
	Tags           []string
	PublishAgeDays *int
}

// ContentResolver resolves a locator to its stored content. Implementations
// live at the integration boundary (database, CMS client); the extractor only
// requires that a missing document is reported as a nil RawContent with a nil
// error, which triggers the locator-only fallback rather than a failure.
type ContentResolver interface {
	Resolve(ctx context.Context, locator string) (*RawContent, error)
}

// ResolverFunc adapts a function to the ContentResolver interface.
type ResolverFunc func(ctx context.Context, locator string) (*RawContent, error)

func (f ResolverFunc) Resolve(ctx context.Context, locator string) (*RawContent, error) {
	return f(ctx, locator)
}
