package analysis

import "regexp"

const (
	FindingEmail      = "Email address detected"
	FindingPhone      = "Phone number detected"
	FindingCreditCard = "Possible credit card number detected"
	FindingSSN        = "Possible SSN detected"
	FindingIP         = "IP address detected"
	FindingProfanity  = "Potentially inappropriate language detected"
)

// Patterns are compiled once; *regexp.Regexp carries no match state between calls.
var (
	emailPattern      = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phonePattern      = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	creditCardPattern = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	ssnPattern        = regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`)
	ipPattern         = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

type piiRule struct {
	label       string
	pattern     *regexp.Regexp
	replacement string
}

// detection order
var piiRules = []piiRule{
	{FindingEmail, emailPattern, "[EMAIL REDACTED]"},
	{FindingPhone, phonePattern, "[PHONE REDACTED]"},
	{FindingCreditCard, creditCardPattern, "[CARD REDACTED]"},
	{FindingSSN, ssnPattern, "[SSN REDACTED]"},
	{FindingIP, ipPattern, "[IP REDACTED]"},
}

// redaction order: the broad digit patterns run last so they do not eat
// addresses and SSNs first.
var redactRules = []piiRule{piiRules[0], piiRules[4], piiRules[3], piiRules[2], piiRules[1]}

// DetectPII runs every family independently and returns one label per family hit.
func DetectPII(text string) []string {
	findings := []string{}
	for _, r := range piiRules {
		if r.pattern.MatchString(text) {
			findings = append(findings, r.label)
		}
	}
	return findings
}

// RedactPII masks every detected span.
func RedactPII(text string) string {
	for _, r := range redactRules {
		text = r.pattern.ReplaceAllLiteralString(text, r.replacement)
	}
	return text
}

// LogSnippet is the only form of message text that goes into logs.
func LogSnippet(text string) string {
	const max = 80
	rs := []rune(RedactPII(text))
	if len(rs) <= max {
		return string(rs)
	}
	return string(rs[:max]) + "..."
}
