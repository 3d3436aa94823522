// Package search ranks entries against a free-text query with typo-tolerant matching.
package search

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/pbaille/soundbyte/internal/domain"
)

// Field weights; title counts most, then summary and tags equally
const (
	TitleWeight   = 0.4
	SummaryWeight = 0.3
	TagsWeight    = 0.3
)

// Threshold is the worst per-field score still counted as a match
const Threshold = 0.4

// epsilon stands in for an exact (zero-distance) field match so the weighted product stays meaningful
const epsilon = 0.001

type document struct {
	title   []rune
	summary []rune
	tags    [][]rune
}

// Index is built once per entry set and queried many times
type Index struct {
	entries []domain.Entry
	docs    []document
}

// Build lowercases and tokenizes every searchable field of entries
func Build(entries []domain.Entry) *Index {
	idx := &Index{
		entries: entries,
		docs:    make([]document, len(entries)),
	}
	for i, e := range entries {
		doc := document{
			title:   []rune(strings.ToLower(e.Title)),
			summary: []rune(strings.ToLower(e.Summary)),
			tags:    make([][]rune, len(e.Tags)),
		}
		for j, t := range e.Tags {
			doc.tags[j] = []rune(strings.ToLower(t))
		}
		idx.docs[i] = doc
	}
	return idx
}

// Len returns the number of indexed entries
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Active reports whether query would actually narrow results
func Active(query string) bool {
	return strings.TrimSpace(query) != ""
}

// Search returns entries matching query, best first. Lower scores are better.
// A blank query returns every entry in index order with score 0.
func (idx *Index) Search(query string) []domain.Match {
	if !Active(query) {
		all := make([]domain.Match, len(idx.entries))
		for i, e := range idx.entries {
			all[i] = domain.Match{Entry: e, Score: 0}
		}
		return all
	}

	q := []rune(strings.ToLower(strings.TrimSpace(query)))
	matches := make([]domain.Match, 0)
	for i, doc := range idx.docs {
		if score, ok := doc.score(q); ok {
			matches = append(matches, domain.Match{Entry: idx.entries[i], Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	return matches
}

func (d document) score(q []rune) (float64, bool) {
	total := 1.0
	matched := false

	apply := func(s, weight float64) {
		if s > Threshold {
			return
		}
		matched = true
		total *= math.Pow(math.Max(s, epsilon), weight)
	}

	apply(fieldScore(q, d.title), TitleWeight)
	apply(fieldScore(q, d.summary), SummaryWeight)

	best := 1.0
	for _, t := range d.tags {
		if s := fieldScore(q, t); s < best {
			best = s
		}
	}
	apply(best, TagsWeight)

	return total, matched
}

// fieldScore is the normalized edit distance between q and its closest
// substring of text, in [0,1]. The match position does not matter.
func fieldScore(q, text []rune) float64 {
	if len(text) == 0 {
		return 1
	}
	if strings.Contains(string(text), string(q)) {
		return 0
	}

	qs := string(q)
	best := len(q)
	for size := len(q) - 1; size <= len(q)+1; size++ {
		if size <= 0 {
			continue
		}
		if size > len(text) {
			size = len(text)
		}
		for start := 0; start+size <= len(text); start++ {
			d := levenshtein.ComputeDistance(qs, string(text[start:start+size]))
			if d < best {
				best = d
				if best == 1 {
					// Exact substrings were handled above
					return float64(best) / float64(len(q))
				}
			}
		}
		if size == len(text) {
			break
		}
	}
	return math.Min(1, float64(best)/float64(len(q)))
}
