package analysis

import "regexp"

var profanityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:damn|hell|crap|bloody)\b`),
	regexp.MustCompile(`(?i)\bf[u*@#$!]+c?k+(?:ing|ed|er|s)?\b`),
	regexp.MustCompile(`(?i)\bs[h*#$!]+[i*!1]+t+(?:ty|s)?\b`),
	regexp.MustCompile(`(?i)\ba[s$*]{2}(?:hole)?\b`),
	regexp.MustCompile(`(?i)\b(?:idiot|stupid|moron|dumb|incompetent)s?\b`),
}

// DetectProfanity collapses every hit into a single label.
func DetectProfanity(text string) []string {
	for _, re := range profanityPatterns {
		if re.MatchString(text) {
			return []string{FindingProfanity}
		}
	}
	return []string{}
}
