// Package sanitize converts raw feed descriptions (often HTML fragments)
// into short plain-text notification lines.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	maxDescriptionLen = 150
	truncateAt        = 147
)

// Sanitizer strips markup and bounds description length.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func New() *Sanitizer {
	// StrictPolicy drops every tag and keeps only text content.
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Description produces the plain-text form of a raw description: tags
// removed, entities decoded, whitespace runs (including newlines) collapsed
// to single spaces, trimmed, and truncated to 150 characters with an
// ellipsis marker.
func (s *Sanitizer) Description(raw string) string {
	if raw == "" {
		return ""
	}
	text := s.policy.Sanitize(raw)
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")
	return truncate(text)
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxDescriptionLen {
		return text
	}
	return string(runes[:truncateAt]) + "..."
}
