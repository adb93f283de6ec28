package builder

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultSummaryWords is the excerpt length used for listing pages.
const DefaultSummaryWords = 25

// tagStripper removes all markup from rendered bodies before they are cut,
// so an excerpt never ends inside an open element.
var tagStripper = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

// Truncate returns the first limit whitespace-separated words of text joined
// by single spaces.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) > limit {
		words = words[:limit]
	}
	return strings.Join(words, " ")
}

// WithSummaries returns copies of items, each with a summary key holding the
// first limit words of its content with markup removed. The input mappings
// are not modified.
func WithSummaries(items []Params, limit int) []Params {
	out := make([]Params, len(items))
	for i, item := range items {
		c := item.Clone()
		c[KeySummary] = Truncate(tagStripper.Sanitize(item[KeyContent]), limit)
		out[i] = c
	}
	return out
}
