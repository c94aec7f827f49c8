package moderation

import (
	"regexp"
	"strings"
)

// Scoring weights. The score is capped at 100.
const (
	keywordWeight    = 10
	patternWeight    = 15
	linkFloodWeight  = 20
	repetitionWeight = 25
	maxScore         = 100

	linkFloodLimit = 3
	longRunLimit   = 10
	// A token must both dominate the text and actually repeat before the
	// repetition heuristic fires; otherwise every two-word message trips it.
	repetitionRatio    = 0.3
	repetitionMinCount = 3
)

// defaultKeywords are matched case-insensitively as substrings. Extra keywords
// come from config.
var defaultKeywords = []string{
	"free money",
	"click here",
	"buy now",
	"limited offer",
	"act now",
	"earn cash",
	"winner winner",
	"guaranteed income",
	"no risk",
	"crypto giveaway",
}

// spamPatterns catch shapes that keyword lists miss.
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://(?:bit\.ly|tinyurl\.com|t\.co)/\S+`),
	regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`), // bitcoin address
	regexp.MustCompile(`(?i)\b\d{1,3}%\s*(?:off|free|discount)\b`),
}

var urlPattern = regexp.MustCompile(`https?://`)

// Filter scores user-generated content. Stateless and synchronous; no
// external calls.
type Filter struct {
	keywords []string
}

// NewFilter creates a filter with the built-in keywords plus extras.
func NewFilter(extraKeywords []string) *Filter {
	keywords := make([]string, 0, len(defaultKeywords)+len(extraKeywords))
	keywords = append(keywords, defaultKeywords...)
	for _, kw := range extraKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return &Filter{keywords: keywords}
}

// Score rates content from 0 (clean) to 100 (certain spam). Each distinct
// keyword hit adds 10, each pattern hit 15, more than three links 20, a
// dominant repeated token 25.
func (f *Filter) Score(content string) int {
	if strings.TrimSpace(content) == "" {
		return 0
	}
	lowered := strings.ToLower(content)

	score := 0
	for _, kw := range f.keywords {
		if strings.Contains(lowered, kw) {
			score += keywordWeight
		}
	}
	for _, p := range spamPatterns {
		if p.MatchString(content) {
			score += patternWeight
		}
	}
	// RE2 has no backreferences, so keysmash runs are scanned by hand.
	if hasLongRun(content) {
		score += patternWeight
	}
	if len(urlPattern.FindAllStringIndex(content, -1)) > linkFloodLimit {
		score += linkFloodWeight
	}
	if hasDominantToken(lowered) {
		score += repetitionWeight
	}

	if score > maxScore {
		return maxScore
	}
	return score
}

// hasLongRun reports whether any rune repeats ten or more times in a row.
func hasLongRun(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run >= longRunLimit {
				return true
			}
		} else {
			prev, run = r, 1
		}
	}
	return false
}

// hasDominantToken reports whether a single token makes up more than 30% of
// all tokens and occurs at least three times.
func hasDominantToken(lowered string) bool {
	tokens := strings.Fields(lowered)
	if len(tokens) == 0 {
		return false
	}
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	for _, n := range counts {
		if n >= repetitionMinCount && float64(n) > repetitionRatio*float64(len(tokens)) {
			return true
		}
	}
	return false
}
