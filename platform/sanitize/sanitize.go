// Package sanitize provides text sanitization utilities to prevent XSS attacks.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripHTML removes all HTML from a string, making it safe for text-only display.
func StripHTML(s string) string {
	// bluemonday escapes what it keeps; unescape so stored text stays plain.
	result := html.UnescapeString(strict.Sanitize(s))
	// A second pass catches tags that were entity-encoded in the input.
	result = html.UnescapeString(strict.Sanitize(result))
	return strings.TrimSpace(result)
}

// Text sanitizes a string for safe text storage. Use for user-provided text
// fields like visit findings and plan objectives.
func Text(s string) string {
	return StripHTML(s)
}

// TextPtr is a helper for optional string pointers
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}
