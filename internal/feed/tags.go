package feed

import (
	"sort"

	"github.com/pbaille/soundbyte/internal/domain"
)

// TagCount is one row of the tag frequency table
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagFrequency counts tag occurrences across entries, most frequent first.
// Ties keep the order in which tags were first seen.
func TagFrequency(entries []domain.Entry) []TagCount {
	index := make(map[string]int)
	var counts []TagCount
	for _, e := range entries {
		for _, t := range e.Tags {
			if i, ok := index[t]; ok {
				counts[i].Count++
				continue
			}
			index[t] = len(counts)
			counts = append(counts, TagCount{Tag: t, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if counts == nil {
		counts = []TagCount{}
	}
	return counts
}

// Names returns just the tags, keeping the frequency order
func Names(counts []TagCount) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Tag
	}
	return out
}
