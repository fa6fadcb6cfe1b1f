package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreQuality_BaseAndKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"plain text stays at base", "just some plain words", 50},
		{"research keyword adds 8", "a research note", 58},
		{"technical keyword adds 4", "the algorithm explained", 54},
		{"keyword counted once per set", "research research research", 58},
		{"both sets accumulate", "research into the algorithm", 62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreQuality(tt.text, countWords(tt.text)))
		})
	}
}

func TestScoreQuality_StructuralMarkers(t *testing.T) {
	assert.Equal(t, 55, scoreQuality("intro\n## section two\nmore", 4))
	assert.Equal(t, 53, scoreQuality("items:\n- one\n- two", 4))
	assert.Equal(t, 54, scoreQuality(`see <img src="x.png" alt="a diagram">`, 4))
	// Markdown image with an empty label is not descriptive.
	assert.Equal(t, 50, scoreQuality("![](x.png)", 1))
	assert.Equal(t, 54, scoreQuality("![flow chart](x.png)", 1))
}

func TestScoreQuality_ReferenceLinksCapped(t *testing.T) {
	two := strings.Repeat("see https://example.com/a ", 2)
	assert.Equal(t, 52, scoreQuality(two, countWords(two)))

	many := strings.Repeat("see https://example.com/a ", 15)
	assert.Equal(t, 60, scoreQuality(many, countWords(many)))
}

func TestScoreQuality_WordCountTiers(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{500, 50},
		{1001, 55},
		{2001, 60},
		{5001, 65},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scoreQuality("neutral body", tt.words), "words=%d", tt.words)
	}
}

func TestScoreQuality_ClampedAt100(t *testing.T) {
	// Every signal at once cannot push past 100.
	text := strings.Join(researchKeywords, " ") + " " + strings.Join(technicalKeywords, " ") +
		"\n## heading\n- item\n" + `<img alt="chart">` +
		strings.Repeat(" https://ref.example/x", 15)
	score := scoreQuality(strings.ToLower(text), 6000)
	assert.Equal(t, 100, score)
}

func TestScoreTechnicalDepth_Tiers(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		score int
		tier  TechnicalDepth
	}{
		{"empty", "", 0, DepthBasic},
		{"two terms stay basic", "concurrency and consensus", 4, DepthBasic},
		{"code block reaches intermediate", "concurrency and consensus\n```go\n```", 10, DepthIntermediate},
		{"terms plus code plus math is advanced", "theorem proof invariant ``` $$", 18, DepthAdvanced},
		{"dense vocabulary is expert", "theorem proof invariant quorum consensus gradient tensor ``` $$", 26, DepthExpert},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, tier := scoreTechnicalDepth(tt.text)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestDetectCharacteristics(t *testing.T) {
	tags := detectCharacteristics("we conducted an exclusive review with an algorithm and <video> demos")
	assert.Equal(t, []string{
		CharOriginalResearch,
		CharExclusiveContent,
		CharTechnicalDepth,
		CharMultimediaRich,
	}, tags)

	assert.Empty(t, detectCharacteristics("nothing notable here"))

	// Multiple patterns of one tag still set it once.
	tags = detectCharacteristics("our study shows, per our findings, peer-reviewed work")
	assert.Equal(t, []string{CharOriginalResearch}, tags)
}
