package content

import "strings"

// Quality scoring constants. The score starts at qualityBase and each signal
// adds its fixed increment; the result is clamped to [0,100].
const (
	qualityBase            = 50
	researchKeywordPoints  = 8
	technicalKeywordPoints = 4
	headingPoints          = 5
	listPoints             = 3
	describedImagePoints   = 4
	referenceLinkCap       = 10
	wordTierPoints         = 5
)

// researchKeywords are weighted higher than general technical vocabulary.
// Each term counts at most once regardless of occurrences.
var researchKeywords = []string{
	"research", "study", "analysis", "findings", "methodology",
	"experiment", "peer-reviewed", "dataset", "hypothesis",
}

var technicalKeywords = []string{
	"algorithm", "implementation", "architecture", "framework",
	"protocol", "benchmark", "optimization", "infrastructure",
	"specification", "throughput",
}

// depthVocabulary feeds the separate technical-depth score at weight 2 per
// term found.
var depthVocabulary = []string{
	"complexity", "theorem", "proof", "asymptotic", "concurrency",
	"distributed", "cryptograph", "compiler", "gradient", "tensor",
	"regression", "eigen", "heuristic", "invariant", "idempotent",
	"amortized", "quorum", "consensus",
}

const (
	depthTermPoints = 2
	codeBlockPoints = 6
	mathPoints      = 6

	depthIntermediateMin = 6
	depthAdvancedMin     = 12
	depthExpertMin       = 20
)

var codeBlockMarkers = []string{"```", "<pre", "<code"}

var mathMarkers = []string{"$$", "\\(", "\\[", "\\frac", "\\sum", "∑", "∫", "√", "≤", "≥"}

// characteristicPatterns is the ordered detection table. Any single pattern
// match sets the tag; a tag is set at most once.
var characteristicPatterns = []struct {
	tag      string
	patterns []string
}{
	{CharOriginalResearch, []string{"original research", "our study", "we conducted", "our findings", "peer-reviewed", "our methodology"}},
	{CharExclusiveContent, []string{"exclusive", "first look", "insider", "behind the scenes"}},
	{CharTechnicalDepth, []string{"```", "<pre", "<code", "algorithm", "implementation"}},
	{CharMultimediaRich, []string{"<video", "<audio", "<iframe", "<img", "!["}},
}

// countWords estimates the word count of a body by whitespace splitting.
func countWords(body string) int {
	return len(strings.Fields(body))
}

// scoreQuality computes the quality score for resolved content. lowered is
// the lower-cased title plus body; wordCount is the estimated body length.
func scoreQuality(lowered string, wordCount int) int {
	score := qualityBase

	for _, kw := range researchKeywords {
		if strings.Contains(lowered, kw) {
			score += researchKeywordPoints
		}
	}
	for _, kw := range technicalKeywords {
		if strings.Contains(lowered, kw) {
			score += technicalKeywordPoints
		}
	}

	if hasHeadings(lowered) {
		score += headingPoints
	}
	if hasLists(lowered) {
		score += listPoints
	}
	if hasDescribedImages(lowered) {
		score += describedImagePoints
	}

	links := countReferenceLinks(lowered)
	if links > referenceLinkCap {
		links = referenceLinkCap
	}
	score += links

	for _, threshold := range []int{1000, 2000, 5000} {
		if wordCount > threshold {
			score += wordTierPoints
		}
	}

	return clampScore(score)
}

// scoreTechnicalDepth accumulates the technical score and maps it to a tier.
func scoreTechnicalDepth(lowered string) (int, TechnicalDepth) {
	score := 0
	for _, term := range depthVocabulary {
		if strings.Contains(lowered, term) {
			score += depthTermPoints
		}
	}
	if containsAny(lowered, codeBlockMarkers) {
		score += codeBlockPoints
	}
	if containsAny(lowered, mathMarkers) {
		score += mathPoints
	}
	return score, depthTier(score)
}

func depthTier(score int) TechnicalDepth {
	switch {
	case score >= depthExpertMin:
		return DepthExpert
	case score >= depthAdvancedMin:
		return DepthAdvanced
	case score >= depthIntermediateMin:
		return DepthIntermediate
	default:
		return DepthBasic
	}
}

// detectCharacteristics walks the pattern table in order, returning the tags
// whose any pattern matched.
func detectCharacteristics(lowered string) []string {
	var tags []string
	for _, entry := range characteristicPatterns {
		if containsAny(lowered, entry.patterns) {
			tags = append(tags, entry.tag)
		}
	}
	return tags
}

func hasHeadings(lowered string) bool {
	for _, m := range []string{"<h1", "<h2", "<h3", "<h4", "\n# ", "\n## ", "\n### "} {
		if strings.Contains(lowered, m) {
			return true
		}
	}
	return strings.HasPrefix(lowered, "# ") || strings.HasPrefix(lowered, "## ")
}

func hasLists(lowered string) bool {
	for _, m := range []string{"<ul", "<ol", "<li", "\n- ", "\n* ", "\n1. "} {
		if strings.Contains(lowered, m) {
			return true
		}
	}
	return false
}

// hasDescribedImages detects images that carry descriptive text: an HTML alt
// attribute with content, or markdown image syntax with a non-empty label.
func hasDescribedImages(lowered string) bool {
	if idx := strings.Index(lowered, `alt="`); idx >= 0 {
		rest := lowered[idx+len(`alt="`):]
		if len(rest) > 0 && rest[0] != '"' {
			return true
		}
	}
	if idx := strings.Index(lowered, "!["); idx >= 0 {
		rest := lowered[idx+2:]
		if len(rest) > 0 && rest[0] != ']' {
			return true
		}
	}
	return false
}

func countReferenceLinks(lowered string) int {
	return strings.Count(lowered, "http://") + strings.Count(lowered, "https://")
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
