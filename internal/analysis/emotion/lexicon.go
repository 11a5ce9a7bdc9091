package emotion

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Label is one category of the closed emotion set.
type Label string

const (
	Sadness     Label = "sadness"
	Joy         Label = "joy"
	Anxiety     Label = "anxiety"
	Stress      Label = "stress"
	Fatigue     Label = "fatigue"
	Frustration Label = "frustration"
	Neutral     Label = "neutral"
)

var (
	ErrUnknownCategory   = errors.New("unknown emotion category")
	ErrDuplicateCategory = errors.New("duplicate emotion category")
)

// Labels returns every label of the closed set.
func Labels() []Label {
	return []Label{Sadness, Joy, Anxiety, Stress, Fatigue, Frustration, Neutral}
}

// ParseLabel resolves a raw category name.
func ParseLabel(raw string) (Label, bool) {
	switch Label(strings.ToLower(strings.TrimSpace(raw))) {
	case Sadness:
		return Sadness, true
	case Joy:
		return Joy, true
	case Anxiety:
		return Anxiety, true
	case Stress:
		return Stress, true
	case Fatigue:
		return Fatigue, true
	case Frustration:
		return Frustration, true
	case Neutral:
		return Neutral, true
	default:
		return "", false
	}
}

// Bucket groups the trigger phrases of one category.
type Bucket struct {
	Emotion  Label
	Keywords []string
}

// Lexicon holds every phrase table the analyzer scans. Bucket order is the
// tie-break order.
type Lexicon struct {
	Buckets       []Bucket
	Crisis        []string
	HighIntensity []string
	LowIntensity  []string
	HelpOffers    []string
}

// DefaultLexicon returns the built-in Spanish vocabulary.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Buckets: []Bucket{
			{Emotion: Sadness, Keywords: []string{
				"triste", "llorar", "deprimido", "solo", "soledad", "mal", "dolor", "sufro", "vacío",
				"melancólico", "desanimado", "decaído", "abatido", "afligido",
			}},
			{Emotion: Joy, Keywords: []string{
				"feliz", "contento", "alegre", "genial", "increíble", "bien", "emocionado", "maravilloso",
				"fantástico", "excelente", "radiante", "dichoso", "encantado", "eufórico",
			}},
			{Emotion: Anxiety, Keywords: []string{
				"ansioso", "nervioso", "preocupado", "inquieto", "miedo", "angustia", "pánico", "tenso",
				"intranquilo", "agobiado", "aterrado", "asustado",
			}},
			{Emotion: Stress, Keywords: []string{
				"estresado", "estrés", "presión", "abrumado", "saturado", "colapsado", "agotado",
				"desbordado", "quemado", "burnout", "sobrecargado",
			}},
			{Emotion: Fatigue, Keywords: []string{
				"cansado", "agotado", "exhausto", "sin energía", "fatigado", "dormido", "sueño", "rendido",
				"destrozado", "sin fuerzas", "pesado",
			}},
			{Emotion: Frustration, Keywords: []string{
				"frustrado", "molesto", "enojado", "furioso", "irritado", "harto", "rabia", "ira",
				"enfadado", "impotente", "indignado", "desesperado",
			}},
			{Emotion: Neutral, Keywords: []string{
				"normal", "bien", "regular", "más o menos", "ahí vamos", "tranquilo", "estable", "calmado",
			}},
		},
		Crisis: []string{
			"suicid", "morir", "matarme", "acabar con todo", "no quiero vivir",
			"quitarme la vida", "no vale la pena", "mejor muerto", "hacerme daño",
			"autolesion", "cortarme", "sin salida", "nadie me quiere",
		},
		HighIntensity: []string{"muy", "demasiado", "extremadamente"},
		LowIntensity:  []string{"un poco", "algo"},
		HelpOffers:    []string{"ayuda profesional", "línea de ayuda"},
	}
}

// LoadLexicon reads a YAML lexicon from disk.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return ParseLexicon(data)
}

// ParseLexicon decodes and validates a YAML lexicon.
func ParseLexicon(data []byte) (Lexicon, error) {
	var raw struct {
		Categories []struct {
			Emotion  string   `yaml:"emotion"`
			Keywords []string `yaml:"keywords"`
		} `yaml:"categories"`
		Crisis    []string `yaml:"crisis"`
		Intensity struct {
			High []string `yaml:"high"`
			Low  []string `yaml:"low"`
		} `yaml:"intensity"`
		HelpOffers []string `yaml:"helpOffers"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Lexicon{}, fmt.Errorf("decode lexicon: %w", err)
	}

	lex := Lexicon{
		Crisis:        normalizePhrases(raw.Crisis),
		HighIntensity: normalizePhrases(raw.Intensity.High),
		LowIntensity:  normalizePhrases(raw.Intensity.Low),
		HelpOffers:    normalizePhrases(raw.HelpOffers),
	}

	seen := make(map[Label]struct{}, len(raw.Categories))
	for _, c := range raw.Categories {
		label, ok := ParseLabel(c.Emotion)
		if !ok {
			return Lexicon{}, fmt.Errorf("%w: %q", ErrUnknownCategory, c.Emotion)
		}
		if _, dup := seen[label]; dup {
			return Lexicon{}, fmt.Errorf("%w: %q", ErrDuplicateCategory, label)
		}
		seen[label] = struct{}{}
		lex.Buckets = append(lex.Buckets, Bucket{Emotion: label, Keywords: normalizePhrases(c.Keywords)})
	}

	return lex, nil
}

// normalizePhrases lowercases phrases and drops blanks while keeping order.
func normalizePhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
