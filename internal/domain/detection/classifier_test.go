package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_KnownSignatures(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name       string
		userAgent  string
		actor      string
		risk       RiskLevel
		commercial bool
	}{
		{
			name:       "GPTBot",
			userAgent:  "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko); compatible; GPTBot/1.0; +https://openai.com/gptbot",
			actor:      "OpenAI",
			risk:       RiskHigh,
			commercial: true,
		},
		{
			name:       "ClaudeBot",
			userAgent:  "Mozilla/5.0 (compatible; ClaudeBot/1.0; +claudebot@anthropic.com)",
			actor:      "Anthropic",
			risk:       RiskHigh,
			commercial: true,
		},
		{
			name:       "CCBot",
			userAgent:  "CCBot/2.0 (https://commoncrawl.org/faq/)",
			actor:      "Common Crawl",
			risk:       RiskHigh,
			commercial: true,
		},
		{
			name:       "Googlebot classic stays low risk",
			userAgent:  "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			actor:      "Google",
			risk:       RiskLow,
			commercial: false,
		},
		{
			name:       "case insensitive match",
			userAgent:  "BYTESPIDER",
			actor:      "ByteDance",
			risk:       RiskHigh,
			commercial: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.userAgent)
			assert.True(t, res.IsBot)
			assert.Equal(t, 95, res.Confidence)
			assert.Equal(t, tt.actor, res.ActorName)
			assert.Equal(t, tt.risk, res.RiskLevel)
			assert.Equal(t, tt.commercial, res.Commercial)
			assert.NotEmpty(t, res.Evidence)
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// "Google-Extended" contains both the AI signature pattern and, per the
	// table order, must resolve to Google AI rather than the classic
	// Googlebot entry further down.
	c := NewClassifier(nil)
	res := c.Classify("Mozilla/5.0 (compatible; Google-Extended)")
	assert.Equal(t, "Google AI", res.ActorName)
	assert.Equal(t, RiskHigh, res.RiskLevel)
}

func TestClassify_CustomTableOrderIsRespected(t *testing.T) {
	sigs := []ActorSignature{
		{Name: "First", Patterns: []string{"shared"}, RiskLevel: RiskLow},
		{Name: "Second", Patterns: []string{"shared"}, RiskLevel: RiskHigh},
	}
	c := NewClassifier(sigs)
	res := c.Classify("shared-agent/1.0 Mozilla")
	assert.Equal(t, "First", res.ActorName)
}

func TestClassify_HeuristicFallback(t *testing.T) {
	c := NewClassifier(nil)

	t.Run("curl scores above threshold", func(t *testing.T) {
		res := c.Classify("curl/8.4.0")
		assert.True(t, res.IsBot)
		assert.Empty(t, res.ActorName)
		assert.Equal(t, RiskMedium, res.RiskLevel)
		// curl (25) + no browser token (30) = 55.
		assert.Equal(t, 55, res.Confidence)
	})

	t.Run("confidence capped at 85", func(t *testing.T) {
		res := c.Classify("python-requests crawler fetch")
		assert.True(t, res.IsBot)
		assert.Equal(t, 85, res.Confidence)
		assert.Equal(t, RiskHigh, res.RiskLevel)
	})

	t.Run("plain browser is human", func(t *testing.T) {
		res := c.Classify("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
		assert.False(t, res.IsBot)
		assert.Equal(t, 0, res.Confidence)
	})

	t.Run("unknown non-browser client stays human", func(t *testing.T) {
		// Only the missing-browser-token signal fires (30 <= 50).
		res := c.Classify("MyNewsReader/1.0")
		assert.False(t, res.IsBot)
	})
}

func TestClassify_EmptyInput(t *testing.T) {
	c := NewClassifier(nil)
	for _, input := range []string{"", "   ", "\t\n"} {
		res := c.Classify(input)
		assert.False(t, res.IsBot)
		assert.Equal(t, 0, res.Confidence)
		assert.Equal(t, RiskLow, res.RiskLevel)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(nil)
	a := c.Classify("curl/8.4.0")
	b := c.Classify("curl/8.4.0")
	assert.Equal(t, a, b)
}

func TestNewClassifier_CopiesTable(t *testing.T) {
	sigs := []ActorSignature{{Name: "X", Patterns: []string{"xbot"}, RiskLevel: RiskLow}}
	c := NewClassifier(sigs)
	sigs[0].Name = "mutated"

	res := c.Classify("xbot/1.0 Mozilla")
	assert.Equal(t, "X", res.ActorName)
}

func TestValidateSignatures(t *testing.T) {
	require.NoError(t, ValidateSignatures(DefaultSignatures()))

	assert.Error(t, ValidateSignatures([]ActorSignature{{Patterns: []string{"p"}, RiskLevel: RiskLow}}))
	assert.Error(t, ValidateSignatures([]ActorSignature{{Name: "n", RiskLevel: RiskLow}}))
	assert.Error(t, ValidateSignatures([]ActorSignature{{Name: "n", Patterns: []string{"p"}, RiskLevel: "extreme"}}))
}

func TestRiskLevel_AtLeast(t *testing.T) {
	assert.True(t, RiskHigh.AtLeast(RiskMedium))
	assert.True(t, RiskMedium.AtLeast(RiskMedium))
	assert.False(t, RiskLow.AtLeast(RiskMedium))
	assert.False(t, RiskLevel("bogus").AtLeast(RiskLow))
}
