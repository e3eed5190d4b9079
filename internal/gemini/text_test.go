package gemini

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestConformTweet_AlreadyCompliant(t *testing.T) {
	tweet := "Big news from KISHORE S today! Follow @growwithkishore #DigitalMarketing"

	got := ConformTweet(tweet)

	assert.Equal(t, tweet, got)
}

func TestConformTweet_AppendsSuffixWhenTokensMissing(t *testing.T) {
	got := ConformTweet("AI is changing content creation. #AI")

	assert.Contains(t, got, "KISHORE S")
	assert.Contains(t, got, "@growwithkishore")
	assert.True(t, strings.HasSuffix(got, tweetSuffix))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 280)
}

func TestConformTweet_TruncatesBeforeAppending(t *testing.T) {
	long := strings.Repeat("marketing tips ", 20) // 300 chars, no tokens

	got := ConformTweet(long)

	assert.Contains(t, got, "KISHORE S")
	assert.Contains(t, got, "@growwithkishore")
	assert.Contains(t, got, "...")
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 280)
}

func TestConformTweet_HardTruncatesOverLimit(t *testing.T) {
	// Tokens present but the body alone exceeds the limit.
	long := "KISHORE S @growwithkishore " + strings.Repeat("growth ", 50)

	got := ConformTweet(long)

	assert.LessOrEqual(t, utf8.RuneCountInString(got), 280)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestConformTweet_AllReachableInputsSatisfyConstraints(t *testing.T) {
	inputs := []string{
		"",
		"short",
		"KISHORE S only, handle missing",
		"@growwithkishore only, name missing",
		strings.Repeat("x", 279),
		strings.Repeat("x", 280),
		strings.Repeat("x", 1000),
		"KISHORE S @growwithkishore " + strings.Repeat("y", 400),
		"🚀 emoji heavy " + strings.Repeat("🚀", 300),
	}

	for _, in := range inputs {
		got := ConformTweet(in)
		assert.LessOrEqualf(t, utf8.RuneCountInString(got), 280, "input %q", in)
		assert.Containsf(t, got, "KISHORE S", "input %q", in)
		assert.Containsf(t, got, "@growwithkishore", "input %q", in)
	}
}

func TestClampAltText(t *testing.T) {
	assert.Equal(t, "a short description", ClampAltText("  a short description  "))

	long := strings.Repeat("d", 400)
	got := ClampAltText(long)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 250)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestClampArticle(t *testing.T) {
	exact := strings.Repeat("a", 2500)
	assert.Equal(t, exact, ClampArticle(exact))

	long := strings.Repeat("a", 3000)
	got := ClampArticle(long)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 2500)
	assert.True(t, strings.HasSuffix(got, "..."))
}
