// Package detection implements signature-based classification of automated
// (bot) traffic from client-supplied identifying strings such as User-Agent
// headers. Classification is a pure function over an ordered signature table;
// match order is an observable contract that resolves ties when a string
// could match several vendor patterns.
package detection

import "strings"

// RiskLevel grades how aggressively an actor's traffic tends to monetize or
// redistribute the content it accesses.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// rank orders risk levels so callers can compare them; unknown values rank
// below low.
func (r RiskLevel) rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	}
	return 0
}

// AtLeast reports whether r is at or above the given level.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.rank() >= other.rank()
}

// ActorSignature is a static record describing one known actor. Signatures
// are immutable after load; Classifier copies the slice it is given.
type ActorSignature struct {
	// Name is the canonical actor name reported in classification results
	// and used as the key into the pricing actor-rate table.
	Name string `yaml:"name"`

	// Patterns is the ordered list of case-insensitive substrings that
	// identify this actor within an identifying string.
	Patterns []string `yaml:"patterns"`

	// RiskLevel grades the actor's traffic.
	RiskLevel RiskLevel `yaml:"risk_level"`

	// Commercial indicates the actor's activity has a monetizable use case
	// (model training, answer engines) rather than pure indexing.
	Commercial bool `yaml:"commercial"`

	// Purpose is a free-text description surfaced in reports.
	Purpose string `yaml:"purpose"`
}

// matches reports whether any of the signature's patterns occurs in the
// lower-cased input, returning the matched pattern.
func (s ActorSignature) matches(lowered string) (string, bool) {
	for _, p := range s.Patterns {
		if p == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(p)) {
			return p, true
		}
	}
	return "", false
}

// DefaultSignatures returns the built-in ordered signature table. The order
// is deliberate: AI training and answer-engine crawlers first (most specific
// commercial patterns), archive and SEO tooling next, classic search-engine
// crawlers last so that e.g. "Google-Extended" resolves before "Googlebot".
func DefaultSignatures() []ActorSignature {
	return []ActorSignature{
		{Name: "OpenAI", Patterns: []string{"gptbot", "chatgpt-user", "oai-searchbot"}, RiskLevel: RiskHigh, Commercial: true, Purpose: "large language model training and retrieval"},
		{Name: "Anthropic", Patterns: []string{"claudebot", "anthropic-ai", "claude-web"}, RiskLevel: RiskHigh, Commercial: true, Purpose: "large language model training and retrieval"},
		{Name: "Google AI", Patterns: []string{"google-extended"}, RiskLevel: RiskHigh, Commercial: true, Purpose: "generative AI training corpus"},
		{Name: "Common Crawl", Patterns: []string{"ccbot"}, RiskLevel: RiskHigh, Commercial: true, Purpose: "web-scale corpus redistributed for training"},
		{Name: "ByteDance", Patterns: []string{"bytespider"}, RiskLevel: RiskHigh, Commercial: true, Purpose: "model training crawler"},
		{Name: "Perplexity", Patterns: []string{"perplexitybot"}, RiskLevel: RiskHigh, Commercial: true, Purpose: "answer engine retrieval"},
		{Name: "Cohere", Patterns: []string{"cohere-ai"}, RiskLevel: RiskHigh, Commercial: true, Purpose: "model training crawler"},
		{Name: "Meta AI", Patterns: []string{"meta-externalagent", "facebookbot"}, RiskLevel: RiskHigh, Commercial: true, Purpose: "model training and social preview"},
		{Name: "Amazon", Patterns: []string{"amazonbot"}, RiskLevel: RiskMedium, Commercial: true, Purpose: "Alexa and product search"},
		{Name: "Apple AI", Patterns: []string{"applebot-extended"}, RiskLevel: RiskHigh, Commercial: true, Purpose: "generative AI training corpus"},
		{Name: "Diffbot", Patterns: []string{"diffbot"}, RiskLevel: RiskMedium, Commercial: true, Purpose: "structured data extraction"},
		{Name: "Webz.io", Patterns: []string{"omgili", "omgilibot"}, RiskLevel: RiskMedium, Commercial: true, Purpose: "web data resale"},
		{Name: "You.com", Patterns: []string{"youbot"}, RiskLevel: RiskMedium, Commercial: true, Purpose: "answer engine retrieval"},
		{Name: "Internet Archive", Patterns: []string{"ia_archiver", "archive.org_bot"}, RiskLevel: RiskLow, Commercial: false, Purpose: "web preservation"},
		{Name: "Ahrefs", Patterns: []string{"ahrefsbot"}, RiskLevel: RiskMedium, Commercial: true, Purpose: "SEO backlink index"},
		{Name: "Semrush", Patterns: []string{"semrushbot"}, RiskLevel: RiskMedium, Commercial: true, Purpose: "SEO analytics crawler"},
		{Name: "Google", Patterns: []string{"googlebot"}, RiskLevel: RiskLow, Commercial: false, Purpose: "search indexing"},
		{Name: "Bing", Patterns: []string{"bingbot"}, RiskLevel: RiskLow, Commercial: false, Purpose: "search indexing"},
		{Name: "Apple", Patterns: []string{"applebot"}, RiskLevel: RiskLow, Commercial: false, Purpose: "Siri and Spotlight search"},
		{Name: "DuckDuckGo", Patterns: []string{"duckduckbot"}, RiskLevel: RiskLow, Commercial: false, Purpose: "search indexing"},
		{Name: "Yandex", Patterns: []string{"yandexbot"}, RiskLevel: RiskLow, Commercial: false, Purpose: "search indexing"},
		{Name: "Baidu", Patterns: []string{"baiduspider"}, RiskLevel: RiskLow, Commercial: false, Purpose: "search indexing"},
	}
}

// ValidateSignatures checks a signature table for structural problems:
// empty names, empty pattern lists, or unknown risk levels. It is used when
// loading operator-supplied signature overrides from configuration.
func ValidateSignatures(sigs []ActorSignature) error {
	for i, s := range sigs {
		if s.Name == "" {
			return errSignature(i, "name is required")
		}
		if len(s.Patterns) == 0 {
			return errSignature(i, "at least one pattern is required")
		}
		switch s.RiskLevel {
		case RiskLow, RiskMedium, RiskHigh:
		default:
			return errSignature(i, "risk_level must be low|medium|high")
		}
	}
	return nil
}
