package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	octetPattern   = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	spacingPattern = regexp.MustCompile(`[\r\n\t ]+`)
)

// CleanText is the catalog's standard sanitizer for submitted text: invalid
// UTF-8 is dropped, tags and percent-encoded octets are stripped, and runs of
// whitespace collapse to a single space before trimming.
func CleanText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = tagPattern.ReplaceAllString(s, "")
	s = octetPattern.ReplaceAllString(s, "")
	s = spacingPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
