package analyzer

import (
	"regexp"
	"strings"
)

// Captions are truncated to this many characters before they are sent to the
// text model, long captions add nothing to classification quality.
const MaxCaptionLength = 1000

var (
	hashtagRe = regexp.MustCompile(`#\w+`)
	urlRe     = regexp.MustCompile(`http\S+`)
)

// CleanCaption normalizes a raw caption for model consumption: hashtag and
// url tokens are removed, whitespace runs collapse to single spaces, and the
// result is trimmed and capped at MaxCaptionLength. Empty input yields empty
// output.
func CleanCaption(text string) string {
	if text == "" {
		return ""
	}
	text = hashtagRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > MaxCaptionLength {
		return string(runes[:MaxCaptionLength])
	}
	return text
}
