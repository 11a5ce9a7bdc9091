package emotion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const englishLexicon = `
categories:
  - emotion: sadness
    keywords: ["Sad", "lonely"]
  - emotion: joy
    keywords: ["happy", "  "]
crisis: ["end it all"]
intensity:
  high: ["very"]
  low: ["a little"]
helpOffers: ["professional help"]
`

func TestParseLexiconSwapsVocabulary(t *testing.T) {
	lex, err := ParseLexicon([]byte(englishLexicon))
	require.NoError(t, err)

	require.Len(t, lex.Buckets, 2)
	assert.Equal(t, []string{"sad", "lonely"}, lex.Buckets[0].Keywords)
	assert.Equal(t, []string{"happy"}, lex.Buckets[1].Keywords)

	analyzer := NewAnalyzer(lex)

	analysis := analyzer.Classify("I feel very SAD and lonely")
	assert.Equal(t, Sadness, analysis.Primary)
	assert.Equal(t, High, analysis.Intensity)
	assert.Equal(t, []string{"sad", "lonely"}, analysis.Keywords)
	assert.False(t, analysis.IsCrisis)

	assert.True(t, analyzer.Classify("I want to end it all").IsCrisis)
	assert.Equal(t, Low, analyzer.Classify("a little happy").Intensity)
	assert.True(t, analyzer.OffersHelp("Please reach out for Professional Help"))
}

func TestParseLexiconRejectsUnknownCategory(t *testing.T) {
	_, err := ParseLexicon([]byte("categories:\n  - emotion: boredom\n    keywords: [meh]\n"))
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseLexiconRejectsDuplicateCategory(t *testing.T) {
	data := "categories:\n  - emotion: joy\n    keywords: [a]\n  - emotion: JOY\n    keywords: [b]\n"
	_, err := ParseLexicon([]byte(data))
	require.ErrorIs(t, err, ErrDuplicateCategory)
}

func TestParseLexiconRejectsMalformedYAML(t *testing.T) {
	_, err := ParseLexicon([]byte("categories: [unterminated"))
	require.Error(t, err)
}

func TestLoadLexiconFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(englishLexicon), 0o600))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"end it all"}, lex.Crisis)

	_, err = LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestEmptyLexiconFallsBackToNeutral(t *testing.T) {
	analysis := NewAnalyzer(Lexicon{}).Classify("anything at all")
	assert.Equal(t, Neutral, analysis.Primary)
	assert.Empty(t, analysis.Keywords)
	assert.InDelta(t, 0.3, analysis.Confidence, 1e-9)
}

func TestParseLabel(t *testing.T) {
	label, ok := ParseLabel(" Fatigue ")
	require.True(t, ok)
	assert.Equal(t, Fatigue, label)

	_, ok = ParseLabel("boredom")
	assert.False(t, ok)
}
