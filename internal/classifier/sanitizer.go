package classifier

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips every HTML tag from user-authored text.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a sanitizer that allows no markup at all.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean removes markup and surrounding whitespace. Entities are decoded so the
// result is plain text, not HTML.
func (s *Sanitizer) Clean(input string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(input)))
}
