package emotion

import (
	"math"
	"strings"
)

// Intensity grades how strongly an emotion is expressed.
type Intensity string

const (
	Low    Intensity = "low"
	Medium Intensity = "medium"
	High   Intensity = "high"
)

const (
	baseConfidence    = 0.3
	confidencePerHit  = 0.2
	maximumConfidence = 1.0
)

// Analysis is the classification of one piece of user text.
type Analysis struct {
	Primary    Label     `json:"primary"`
	Confidence float64   `json:"confidence"`
	Keywords   []string  `json:"keywords"`
	Intensity  Intensity `json:"intensity"`
	IsCrisis   bool      `json:"isCrisis"`
	// Emotion always equals Primary; kept for older clients.
	Emotion Label `json:"emotion"`
}

// Matched reports whether any category trigger was found.
func (a Analysis) Matched() bool {
	return len(a.Keywords) > 0
}

// Analyzer scores text against a lexicon. It holds no mutable state and is
// safe for concurrent use.
type Analyzer struct {
	lex Lexicon
}

// NewAnalyzer builds an analyzer over the given lexicon.
func NewAnalyzer(lex Lexicon) *Analyzer {
	return &Analyzer{lex: lex}
}

var defaultAnalyzer = NewAnalyzer(DefaultLexicon())

// Classify runs the default analyzer.
func Classify(text string) Analysis {
	return defaultAnalyzer.Classify(text)
}

// Classify scores text by substring containment. A trigger inside a longer
// word still counts.
func (a *Analyzer) Classify(text string) Analysis {
	normalized := strings.ToLower(text)

	isCrisis := false
	for _, phrase := range a.lex.Crisis {
		if strings.Contains(normalized, phrase) {
			isCrisis = true
			break
		}
	}

	keywords := make([]string, 0)
	best := Neutral
	bestScore := 0
	for _, bucket := range a.lex.Buckets {
		score := 0
		for _, word := range bucket.Keywords {
			if word == "" {
				continue
			}
			if strings.Contains(normalized, word) {
				score++
				keywords = append(keywords, word)
			}
		}
		// strict comparison: an equal later score never displaces an earlier bucket
		if score > bestScore {
			bestScore = score
			best = bucket.Emotion
		}
	}

	return Analysis{
		Primary:    best,
		Confidence: math.Min(baseConfidence+confidencePerHit*float64(bestScore), maximumConfidence),
		Keywords:   keywords,
		Intensity:  a.intensity(normalized),
		IsCrisis:   isCrisis,
		Emotion:    best,
	}
}

// OffersHelp reports whether an assistant reply points the user towards
// professional help.
func (a *Analyzer) OffersHelp(reply string) bool {
	return containsAny(strings.ToLower(reply), a.lex.HelpOffers)
}

func (a *Analyzer) intensity(normalized string) Intensity {
	if containsAny(normalized, a.lex.HighIntensity) {
		return High
	}
	if containsAny(normalized, a.lex.LowIntensity) {
		return Low
	}
	return Medium
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}
