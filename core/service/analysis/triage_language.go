package analysis

import (
	"sort"
	"strings"
	"unicode"
)

const (
	LanguageEnglish           = "english"
	LanguageUnknownNonEnglish = "unknown-non-english"

	wordListThreshold = 2
	scriptThreshold   = 3
	asciiRatioCutoff  = 0.7
)

// LanguageScore is one qualifying candidate.
type LanguageScore struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"matchCount"`
}

// LanguageResult is the heuristic language guess for a message.
type LanguageResult struct {
	PrimaryLanguage   string          `json:"primaryLanguage"`
	IsNonEnglish      bool            `json:"isNonEnglish"`
	DetectedLanguages []LanguageScore `json:"detectedLanguages"`
	ASCIIRatio        float64         `json:"asciiRatio"`
	NeedsTranslation  bool            `json:"needsTranslation"`
}

type languageProbe struct {
	name      string
	threshold int
	words     map[string]bool
	script    []*unicode.RangeTable
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Function words shared with English ("a", "no", "die", "son") are left out.
var languageProbes = []languageProbe{
	{name: "spanish", threshold: wordListThreshold, words: wordSet(
		"el", "la", "los", "las", "que", "de", "y", "es", "por", "para", "con", "una", "mi", "pero",
		"gracias", "hola", "cuenta", "tengo", "puedo", "funciona", "necesito", "ayuda", "está", "muy",
	)},
	{name: "french", threshold: wordListThreshold, words: wordSet(
		"le", "les", "est", "et", "je", "vous", "nous", "pas", "avec", "pour", "une", "mon", "mais",
		"merci", "bonjour", "compte", "ne", "fonctionne", "aide", "très", "ça", "c'est",
	)},
	{name: "german", threshold: wordListThreshold, words: wordSet(
		"der", "das", "und", "ist", "ich", "nicht", "mit", "ein", "eine", "mein", "aber", "danke",
		"hallo", "konto", "funktioniert", "bitte", "hilfe", "sehr", "wir", "sie", "auf",
	)},
	{name: "portuguese", threshold: wordListThreshold, words: wordSet(
		"o", "os", "não", "uma", "com", "para", "obrigado", "obrigada", "olá", "conta", "minha",
		"meu", "ajuda", "funciona", "você", "está", "muito", "mas", "é",
	)},
	{name: "italian", threshold: wordListThreshold, words: wordSet(
		"il", "gli", "che", "è", "non", "sono", "grazie", "ciao", "conto", "mio", "aiuto",
		"funziona", "molto", "ma", "della", "questo", "perché",
	)},
	// kana never appears in Chinese text, so japanese is checked first and wins ties
	{name: "japanese", threshold: scriptThreshold, script: []*unicode.RangeTable{unicode.Hiragana, unicode.Katakana}},
	{name: "chinese", threshold: scriptThreshold, script: []*unicode.RangeTable{unicode.Han}},
	{name: "korean", threshold: scriptThreshold, script: []*unicode.RangeTable{unicode.Hangul}},
	{name: "arabic", threshold: scriptThreshold, script: []*unicode.RangeTable{unicode.Arabic}},
	{name: "russian", threshold: scriptThreshold, script: []*unicode.RangeTable{unicode.Cyrillic}},
}

var languageNames = map[string]string{
	LanguageEnglish:           "English",
	LanguageUnknownNonEnglish: "Unknown (non-English)",
	"spanish":                 "Spanish",
	"french":                  "French",
	"german":                  "German",
	"portuguese":              "Portuguese",
	"italian":                 "Italian",
	"chinese":                 "Chinese",
	"japanese":                "Japanese",
	"korean":                  "Korean",
	"arabic":                  "Arabic",
	"russian":                 "Russian",
}

// LanguageDisplayName returns a human label; unknown codes pass through.
func LanguageDisplayName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// DetectLanguage guesses the message language from function words and script blocks.
func DetectLanguage(text string) LanguageResult {
	tokens := tokenize(strings.ToLower(text))

	detected := []LanguageScore{}
	for _, p := range languageProbes {
		count := 0
		if p.words != nil {
			for _, tok := range tokens {
				if p.words[tok] {
					count++
				}
			}
		} else {
			for _, r := range text {
				if unicode.IsOneOf(p.script, r) {
					count++
				}
			}
		}
		if count < p.threshold {
			continue
		}
		conf := float64(count) / float64(2*p.threshold)
		if conf > 1 {
			conf = 1
		}
		detected = append(detected, LanguageScore{Language: p.name, Confidence: conf, MatchCount: count})
	}
	sort.SliceStable(detected, func(i, j int) bool {
		return detected[i].Confidence > detected[j].Confidence
	})

	ratio := asciiRatio(text)
	primary := LanguageEnglish
	switch {
	case len(detected) > 0:
		primary = detected[0].Language
	case ratio < asciiRatioCutoff:
		primary = LanguageUnknownNonEnglish
	}
	nonEnglish := primary != LanguageEnglish
	return LanguageResult{
		PrimaryLanguage:   primary,
		IsNonEnglish:      nonEnglish,
		DetectedLanguages: detected,
		ASCIIRatio:        ratio,
		NeedsTranslation:  nonEnglish,
	}
}

// tokenize splits on anything that is not a letter or an apostrophe.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func asciiRatio(text string) float64 {
	total, ascii := 0, 0
	for _, r := range text {
		total++
		if r <= unicode.MaxASCII {
			ascii++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(ascii) / float64(total)
}
