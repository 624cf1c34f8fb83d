package services

import (
	"regexp"
	"strings"
)

// tokenPattern matches identifier-like runs: letters, digits and the symbol
// characters common in technology names ("c++", "node.js", "ci/cd", "c#").
var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_\-+/#.]+`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeText lowercases free text and reduces it to its identifier-like
// tokens joined by single spaces. Empty input yields empty output.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	return strings.Join(tokens, " ")
}

// Tokenize returns the normalized token slice for a document.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Excerpt collapses whitespace runs to single spaces and truncates the result
// to at most maxLen characters, for display alongside a score.
func Excerpt(text string, maxLen int) string {
	collapsed := strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if len(collapsed) <= maxLen {
		return collapsed
	}
	return collapsed[:maxLen]
}
