// Package sorting orders a result list by recency, priority tier or relevance.
package sorting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pbaille/soundbyte/internal/domain"
)

// Mode selects the ordering
type Mode string

const (
	ModeDate      Mode = "date"
	ModePriority  Mode = "priority"
	ModeRelevance Mode = "relevance"
)

// ParseMode accepts date, priority and relevance; empty means date
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDate:
		return ModeDate, nil
	case ModePriority:
		return ModePriority, nil
	case ModeRelevance:
		return ModeRelevance, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

// Effective returns the mode actually applied. Relevance means nothing
// without a query, so it falls back to date; so does an unset mode.
func Effective(mode Mode, hasActiveQuery bool) Mode {
	if mode == "" || (mode == ModeRelevance && !hasActiveQuery) {
		return ModeDate
	}
	return mode
}

// Sort returns a new slice ordered by mode. Equal keys keep their input order.
func Sort(matches []domain.Match, mode Mode, hasActiveQuery bool) []domain.Match {
	out := make([]domain.Match, len(matches))
	copy(out, matches)

	var less func(a, b domain.Match) bool
	switch Effective(mode, hasActiveQuery) {
	case ModePriority:
		less = func(a, b domain.Match) bool {
			return a.Entry.Priority.Rank() < b.Entry.Priority.Rank()
		}
	case ModeRelevance:
		less = func(a, b domain.Match) bool {
			return a.Score < b.Score
		}
	default:
		less = func(a, b domain.Match) bool {
			return a.Entry.Date.After(b.Entry.Date)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}
