package analysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinMessageLength = 10
	MaxMessageLength = 5000

	ErrTooShort = "Message must be at least 10 characters for reliable triage."
	ErrTooLong  = "Message exceeds 5000 character limit."

	WarnSpam         = "Message looks like spam or promotional content."
	WarnSpecialChars = "Message contains mostly special characters."
)

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bclick\s+here\b`),
	regexp.MustCompile(`(?i)\bbuy\s+now\b`),
	regexp.MustCompile(`(?i)\blimited\s+time\s+offer\b`),
	regexp.MustCompile(`(?i)\bact\s+now\b`),
	regexp.MustCompile(`(?i)\bfree\s+money\b`),
	regexp.MustCompile(`(?i)\byou(?:'ve|\s+have)\s+won\b`),
	regexp.MustCompile(`(?i)\bcongratulations[,!]?\s+you\b`),
	regexp.MustCompile(`(?i)\b100%\s+free\b`),
	regexp.MustCompile(`(?i)\brisk[\s-]+free\b`),
	regexp.MustCompile(`(?i)\bearn\s+\$\d+`),
	regexp.MustCompile(`(?i)\bcasino\b`),
	regexp.MustCompile(`(?i)\bviagra\b`),
}

const (
	repeatMinRuns = 5
	repeatMaxUnit = 4
)

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// IsValid reports whether analysis may proceed.
func (v ValidationResult) IsValid() bool { return len(v.Errors) == 0 }

// Validate checks length bounds and flags spam-like or symbol-heavy input.
func Validate(text string) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)

	if n < MinMessageLength {
		res.Errors = append(res.Errors, ErrTooShort)
	}
	if n > MaxMessageLength {
		res.Errors = append(res.Errors, ErrTooLong)
	}

	if looksLikeSpam(trimmed) {
		res.Warnings = append(res.Warnings, WarnSpam)
	}
	if n > 20 && alnumRatio(trimmed) < 0.5 {
		res.Warnings = append(res.Warnings, WarnSpecialChars)
	}
	return res
}

func looksLikeSpam(text string) bool {
	for _, re := range spamPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return hasRepeatedRun([]rune(text), repeatMinRuns)
}

// hasRepeatedRun reports a unit of 1..4 runes repeated at least minRuns
// times back to back. Units made only of whitespace or only of digits do
// not count, so card and order numbers are left to PII detection.
func hasRepeatedRun(rs []rune, minRuns int) bool {
	for unit := 1; unit <= repeatMaxUnit; unit++ {
		need := unit * minRuns
		if len(rs) < need {
			return false
		}
		// run counts positions i where rs[i] == rs[i-unit]
		run := 0
		for i := unit; i < len(rs); i++ {
			if rs[i] != rs[i-unit] {
				run = 0
				continue
			}
			run++
			if run >= need-unit && !ignoredUnit(rs[i-unit+1:i+1]) {
				return true
			}
		}
	}
	return false
}

func ignoredUnit(rs []rune) bool {
	return allRunes(rs, unicode.IsSpace) || allRunes(rs, unicode.IsDigit)
}

func allRunes(rs []rune, pred func(rune) bool) bool {
	for _, r := range rs {
		if !pred(r) {
			return false
		}
	}
	return true
}

func alnumRatio(text string) float64 {
	total, alnum := 0, 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(alnum) / float64(total)
}
