// Package merchant normalizes raw merchant strings into grouping keys and
// display names.
package merchant

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonKeyChars = regexp.MustCompile(`[^a-z0-9\s]+`)
	whitespace  = regexp.MustCompile(`\s+`)

	// Patterns for cleaning merchant names for display
	prefixPattern = regexp.MustCompile(`(?i)^(pos |eftpos |visa |mastercard |amex |paypal \*)`)
	suffixPattern = regexp.MustCompile(`(?i)\s+(pty|ltd|inc|corp|llc|au|us|uk|nz|sg)\.?$`)
	longNumbers   = regexp.MustCompile(`\d{6,}`)
	specialChars  = regexp.MustCompile(`[*#]+`)

	titleCaser = cases.Title(language.English)
)

// Key canonicalizes a raw merchant string into a grouping key: lower-cased,
// stripped of everything outside [a-z0-9\s], whitespace collapsed, trimmed.
// An empty input yields an empty key, which detectors treat as ungroupable.
func Key(raw string) string {
	key := strings.ToLower(raw)
	key = nonKeyChars.ReplaceAllString(key, "")
	key = whitespace.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}

// DisplayName cleans a raw merchant name for presentation: card-terminal
// prefixes, corporate suffixes, long reference numbers, and separator noise
// are removed, then each word is title-cased (short words upper-cased).
func DisplayName(raw string) string {
	cleaned := prefixPattern.ReplaceAllString(raw, "")
	cleaned = suffixPattern.ReplaceAllString(cleaned, "")
	cleaned = longNumbers.ReplaceAllString(cleaned, "")
	cleaned = specialChars.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	words := strings.Fields(cleaned)
	for i, word := range words {
		if len(word) > 2 {
			words[i] = titleCaser.String(strings.ToLower(word))
		} else {
			words[i] = strings.ToUpper(word)
		}
	}

	result := strings.Join(words, " ")
	if len(result) > 50 {
		result = result[:50]
	}
	return result
}
