package utils

import (
	"math/rand"
	"regexp"
	"strings"
)

var profileUrlRe = regexp.MustCompile(`instagram\.com/([a-zA-Z0-9._]+)`)

// ExtractUsername extracts the account handle from raw user input, which can
// be a bare handle, an "@handle", or a full profile URL. Returns empty string
// when no handle can be recognized.
func ExtractUsername(input string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(input, "@", ""))
	if cleaned == "" {
		return ""
	}
	if match := profileUrlRe.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	// Bare handle, possibly with trailing path or query garbage
	cleaned = strings.SplitN(cleaned, "/", 2)[0]
	return strings.SplitN(cleaned, "?", 2)[0]
}

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RandomAlphabetString generates a lower-case alphabet-only string of given
// length, used for temp DB names.
func RandomAlphabetString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}
