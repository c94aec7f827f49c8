package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Score(t *testing.T) {
	f := NewFilter(nil)

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t ", 0},
		{"clean text", "Looking for teammates for the robotics project this semester.", 0},
		{"one keyword", "click here to join our lab", keywordWeight},
		{"two keywords", "click here for free money", 2 * keywordWeight},
		{"shortener pattern", "check https://bit.ly/abc123", patternWeight},
		{"discount pattern", "get 90% off today", patternWeight},
		{"repeated char run", "loooooooooooool what a match", patternWeight},
		{"exactly ten repeats fire", "loooooooooo", patternWeight},
		{"nine repeats stay clean", "whaaaaaaaaat", 0},
		{
			"link flood",
			"http://a.com http://b.com http://c.com http://d.com",
			linkFloodWeight,
		},
		{
			"dominant token",
			"spam spam spam spam spam join now",
			repetitionWeight,
		},
		{
			"stacked signals cap at 100",
			"free money click here buy now limited offer act now earn cash no risk crypto giveaway " +
				"https://bit.ly/x 99% off " + strings.Repeat("http://spam.example ", 5) +
				strings.Repeat("win ", 20),
			maxScore,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Score(tt.content))
		})
	}
}

func TestFilter_ScoreMonotonicInKeywords(t *testing.T) {
	f := NewFilter(nil)

	content := ""
	prev := 0
	for _, kw := range []string{"free money", "click here", "buy now", "limited offer"} {
		content += kw + " and then some filler words here "
		score := f.Score(content)
		assert.GreaterOrEqual(t, score, prev, "adding %q must not lower the score", kw)
		prev = score
	}
}

func TestFilter_ExtraKeywords(t *testing.T) {
	f := NewFilter([]string{"Essay Mill", "  ", ""})

	assert.Equal(t, keywordWeight, f.Score("best essay mill in town"))
	assert.Zero(t, NewFilter(nil).Score("best essay mill in town"))
}

func TestFilter_TwoWordMessageNotDominant(t *testing.T) {
	f := NewFilter(nil)
	// Every token is 50% of a two-token message; the heuristic must not fire
	// on ordinary short messages.
	assert.Zero(t, f.Score("hello world"))
}
