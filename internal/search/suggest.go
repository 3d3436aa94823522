package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Suggest returns up to limit tags matching input for autocomplete. tags are
// expected most frequent first; that order is kept for a blank input and
// breaks ties between equally good fuzzy matches.
func Suggest(tags []string, input string, limit int) []string {
	input = strings.TrimSpace(input)
	if limit <= 0 || limit > len(tags) {
		limit = len(tags)
	}

	if input == "" {
		out := make([]string, limit)
		copy(out, tags[:limit])
		return out
	}

	found := fuzzy.Find(strings.ToLower(input), lowered(tags))
	out := make([]string, 0, limit)
	for _, m := range found {
		if len(out) == limit {
			break
		}
		out = append(out, tags[m.Index])
	}
	return out
}

func lowered(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ToLower(t)
	}
	return out
}
