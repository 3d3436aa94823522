// Package filter narrows a candidate list by category, priority tier and time window.
package filter

import (
	"fmt"
	"strings"

	"github.com/pbaille/soundbyte/internal/domain"
)

// All disables a facet
const All = "all"

// Window is a trailing date range anchored on today
type Window string

const (
	WindowAll   Window = "all"
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// ParseWindow accepts all, today, week (or this-week) and month (or this-month).
// An empty string is treated as all.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return WindowAll, nil
	case "today":
		return WindowToday, nil
	case "week", "this-week":
		return WindowWeek, nil
	case "month", "this-month":
		return WindowMonth, nil
	default:
		return "", fmt.Errorf("unknown time window %q", s)
	}
}

// Since returns the earliest day inside the window and whether the window limits anything.
// The month window uses calendar month subtraction, so on Mar 31 it starts on Feb 28 (or 29).
func (w Window) Since(today domain.Day) (domain.Day, bool) {
	switch w {
	case WindowToday:
		return today, true
	case WindowWeek:
		return today.AddDays(-7), true
	case WindowMonth:
		return today.AddMonths(-1), true
	default:
		return domain.Day{}, false
	}
}

// Contains reports whether an entry dated d falls inside the window
func (w Window) Contains(d domain.Day, today domain.Day) bool {
	since, limited := w.Since(today)
	if !limited {
		return true
	}
	if w == WindowToday {
		return d.Equal(today)
	}
	return !d.Before(since)
}

// Criteria is the set of active facets; zero values disable a facet
type Criteria struct {
	Category domain.Category `json:"category,omitempty"`
	Priority domain.Priority `json:"priority,omitempty"`
	Window   Window          `json:"time,omitempty"`
}

// ParseCriteria builds Criteria from raw facet values as they arrive from a
// query string or flags. Unknown categories and tiers are accepted verbatim;
// they simply match nothing.
func ParseCriteria(category, priority, window string) (Criteria, error) {
	w, err := ParseWindow(window)
	if err != nil {
		return Criteria{}, err
	}
	return Criteria{
		Category: domain.Category(strings.TrimSpace(category)),
		Priority: domain.Priority(strings.TrimSpace(priority)),
		Window:   w,
	}, nil
}

// Active reports whether any facet narrows the list
func (c Criteria) Active() bool {
	return enabled(string(c.Category)) || enabled(string(c.Priority)) || enabled(string(c.Window))
}

// Match reports whether e passes every enabled facet
func (c Criteria) Match(e domain.Entry, today domain.Day) bool {
	if enabled(string(c.Category)) && e.Category != c.Category {
		return false
	}
	if enabled(string(c.Priority)) && e.Priority != c.Priority {
		return false
	}
	if enabled(string(c.Window)) && !c.Window.Contains(e.Date, today) {
		return false
	}
	return true
}

// Apply returns the candidates that pass c, in their original order.
// The input slice is not modified.
func Apply(candidates []domain.Match, c Criteria, today domain.Day) []domain.Match {
	out := make([]domain.Match, 0, len(candidates))
	for _, m := range candidates {
		if c.Match(m.Entry, today) {
			out = append(out, m)
		}
	}
	return out
}

func enabled(v string) bool {
	return v != "" && v != All
}
