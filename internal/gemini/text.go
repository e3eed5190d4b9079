package gemini

import (
	"strings"
	"unicode/utf8"
)

const (
	identityName   = "KISHORE S"
	identityHandle = "@growwithkishore"

	maxTweetLength   = 280
	maxAltTextLength = 250
	maxArticleLength = 2500

	tweetSuffix     = " | KISHORE S @growwithkishore"
	tweetSuffixBare = "KISHORE S @growwithkishore"
)

// ConformTweet forces generated tweet copy to satisfy the posting
// constraints: at most 280 characters, and both identity tokens present.
// When the tokens are missing a fixed suffix is appended, truncating the body
// first if the combined length would not fit.
func ConformTweet(text string) string {
	text = strings.TrimSpace(text)

	if !strings.Contains(text, identityName) || !strings.Contains(text, identityHandle) {
		if utf8.RuneCountInString(text)+utf8.RuneCountInString(tweetSuffix) < maxTweetLength {
			text += tweetSuffix
		} else {
			keep := maxTweetLength - utf8.RuneCountInString(tweetSuffix) - 3
			text = strings.TrimSpace(truncateRunes(text, keep)) + "..." + tweetSuffixBare
		}
	}

	if utf8.RuneCountInString(text) > maxTweetLength {
		text = strings.TrimSpace(truncateRunes(text, maxTweetLength-3)) + "..."
	}

	return text
}

// ClampAltText hard-truncates alt text to 250 characters with an ellipsis.
func ClampAltText(text string) string {
	return clamp(text, maxAltTextLength)
}

// ClampArticle hard-truncates article text to 2,500 characters with an
// ellipsis.
func ClampArticle(text string) string {
	return clamp(text, maxArticleLength)
}

func clamp(text string, limit int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return strings.TrimSpace(truncateRunes(text, limit-3)) + "..."
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
