package detection

import (
	"fmt"
	"strings"

	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

// ClassificationResult is the outcome of classifying one identifying string.
// It is derived per request and never persisted by this package.
type ClassificationResult struct {
	IsBot bool `json:"is_bot"`

	// Confidence is an integer percentage in [0,100]. Signature matches
	// score 95; heuristic matches score at most 85.
	Confidence int `json:"confidence"`

	// ActorName is the canonical actor name, empty when the actor is
	// unknown. Callers that need a display value use "Unknown".
	ActorName string `json:"actor_name,omitempty"`

	RiskLevel  RiskLevel `json:"risk_level"`
	Commercial bool      `json:"commercial"`

	// Purpose is the matched signature's description, empty for heuristic
	// and non-bot results.
	Purpose string `json:"purpose,omitempty"`

	// Evidence lists the reasons for the verdict in the order they were
	// accumulated, for audit output.
	Evidence []string `json:"evidence,omitempty"`
}

// Heuristic scoring constants. A score above heuristicBotThreshold marks the
// input as a bot; above heuristicHighRiskThreshold the risk level is raised
// from medium to high.
const (
	heuristicBotThreshold      = 50
	heuristicHighRiskThreshold = 70
	heuristicMaxConfidence     = 85
	signatureConfidence        = 95
	missingBrowserTokenPoints  = 30
)

// automationIndicators are generic tokens that suggest automation, with the
// points each contributes. Each token counts at most once.
var automationIndicators = []struct {
	token  string
	points int
}{
	{"bot", 30},
	{"crawler", 30},
	{"scrap", 30},
	{"spider", 25},
	{"python", 25},
	{"curl", 25},
	{"wget", 25},
	{"go-http-client", 25},
	{"java", 15},
	{"fetch", 15},
	{"httpclient", 15},
}

// browserTokens are substrings present in virtually every human browser
// identifying string. Their absence from a non-empty input is itself a
// weak automation signal.
var browserTokens = []string{"mozilla", "chrome", "safari", "firefox", "edg", "opera"}

// Classifier matches identifying strings against an ordered signature table
// with a heuristic fallback. It is immutable after construction and safe for
// concurrent use.
type Classifier struct {
	signatures []ActorSignature
}

// NewClassifier builds a Classifier over the given ordered signature table.
// A nil or empty table falls back to DefaultSignatures. The table is copied
// so later mutation by the caller cannot affect classification.
func NewClassifier(signatures []ActorSignature) *Classifier {
	if len(signatures) == 0 {
		signatures = DefaultSignatures()
	}
	table := make([]ActorSignature, len(signatures))
	copy(table, signatures)
	return &Classifier{signatures: table}
}

// Signatures returns a copy of the classifier's table, preserving order.
func (c *Classifier) Signatures() []ActorSignature {
	out := make([]ActorSignature, len(c.signatures))
	copy(out, c.signatures)
	return out
}

// Classify maps an identifying string to a ClassificationResult. It is a
// pure function: no side effects, never an error. An empty input yields a
// non-bot result with zero confidence.
//
// The signature scan is first-match-wins in table order; no scoring happens
// across multiple matching signatures. Only when no signature matches does
// the heuristic scorer run.
func (c *Classifier) Classify(identifier string) ClassificationResult {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return ClassificationResult{
			RiskLevel: RiskLow,
			Evidence:  []string{"empty identifying string"},
		}
	}
	lowered := strings.ToLower(trimmed)

	for _, sig := range c.signatures {
		if pattern, ok := sig.matches(lowered); ok {
			return ClassificationResult{
				IsBot:      true,
				Confidence: signatureConfidence,
				ActorName:  sig.Name,
				RiskLevel:  sig.RiskLevel,
				Commercial: sig.Commercial,
				Purpose:    sig.Purpose,
				Evidence:   []string{fmt.Sprintf("matched signature %q for actor %s", pattern, sig.Name)},
			}
		}
	}

	return c.classifyHeuristic(lowered)
}

// classifyHeuristic scores a non-empty, lower-cased identifier that matched
// no signature.
func (c *Classifier) classifyHeuristic(lowered string) ClassificationResult {
	score := 0
	var evidence []string

	for _, ind := range automationIndicators {
		if strings.Contains(lowered, ind.token) {
			score += ind.points
			evidence = append(evidence, fmt.Sprintf("automation indicator %q (+%d)", ind.token, ind.points))
		}
	}

	if !containsAny(lowered, browserTokens) {
		score += missingBrowserTokenPoints
		evidence = append(evidence, fmt.Sprintf("no browser token present (+%d)", missingBrowserTokenPoints))
	}

	if score <= heuristicBotThreshold {
		return ClassificationResult{
			RiskLevel: RiskLow,
			Evidence:  append(evidence, fmt.Sprintf("heuristic score %d below threshold %d", score, heuristicBotThreshold)),
		}
	}

	confidence := score
	if confidence > heuristicMaxConfidence {
		confidence = heuristicMaxConfidence
	}
	risk := RiskMedium
	if score > heuristicHighRiskThreshold {
		risk = RiskHigh
	}

	return ClassificationResult{
		IsBot:      true,
		Confidence: confidence,
		RiskLevel:  risk,
		Evidence:   append(evidence, fmt.Sprintf("heuristic score %d exceeds threshold %d", score, heuristicBotThreshold)),
	}
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func errSignature(index int, msg string) error {
	return errors.Newf(errors.ErrCodeSignatureInvalid, "signature %d: %s", index, msg)
}
