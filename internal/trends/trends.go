// Package trends computes dashboard statistics over the complete entry set.
// Active filters never apply here: trend views show global trends.
package trends

import (
	"github.com/pbaille/soundbyte/internal/domain"
	"github.com/pbaille/soundbyte/internal/feed"
)

// Options sizes the trend windows
type Options struct {
	Days       int // trailing days in the daily histogram, ending today
	Hot        int // number of hot tags
	RecentDays int // a tag seen only within this many days is new
	TopTags    int // tags shown in the frequency chart
}

// DefaultOptions matches the dashboard: 14 days, top 10 hot tags, 3-day novelty window, top 20 tags
func DefaultOptions() Options {
	return Options{Days: 14, Hot: 10, RecentDays: 3, TopTags: 20}
}

// CategoryShare is one category's slice of the entry set
type CategoryShare struct {
	Category domain.Category `json:"category"`
	Count    int             `json:"count"`
	Share    float64         `json:"share"`
}

// PriorityCount is the number of entries in one tier
type PriorityCount struct {
	Priority domain.Priority `json:"priority"`
	Count    int             `json:"count"`
}

// DayCount is one bucket of the daily histogram
type DayCount struct {
	Day   domain.Day `json:"date"`
	Label string     `json:"label"`
	Count int        `json:"count"`
}

// HotTag is a frequent tag, flagged when it only shows up recently
type HotTag struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
	IsNew bool   `json:"isNew"`
}

// DateRange spans the oldest and newest entry dates
type DateRange struct {
	From domain.Day `json:"from"`
	To   domain.Day `json:"to"`
}

// Report bundles every trend statistic
type Report struct {
	Total          int             `json:"total"`
	TagFrequency   []feed.TagCount `json:"tagFrequency"`
	TopTags        []feed.TagCount `json:"topTags"`
	Categories     []CategoryShare `json:"categories"`
	PriorityCounts []PriorityCount `json:"priorities"`
	Daily          []DayCount      `json:"daily"`
	HotTags        []HotTag        `json:"hotTags"`
	DateRange      DateRange       `json:"dateRange"`
}

// Aggregate computes the report for entries as of today
func Aggregate(entries []domain.Entry, today domain.Day, opts Options) Report {
	freq := feed.TagFrequency(entries)
	return Report{
		Total:          len(entries),
		TagFrequency:   freq,
		TopTags:        head(freq, opts.TopTags),
		Categories:     Categories(entries),
		PriorityCounts: Priorities(entries),
		Daily:          Daily(entries, today, opts.Days),
		HotTags:        Hot(entries, freq, today, opts.Hot, opts.RecentDays),
		DateRange:      Span(entries),
	}
}

// Categories counts entries per category. Known categories come first in their
// fixed order, zero counts included; unknown ones follow in first-seen order.
func Categories(entries []domain.Entry) []CategoryShare {
	counts := make(map[domain.Category]int)
	var unknown []domain.Category
	for _, e := range entries {
		if _, seen := counts[e.Category]; !seen && !e.Category.Known() {
			unknown = append(unknown, e.Category)
		}
		counts[e.Category]++
	}

	total := len(entries)
	if total == 0 {
		total = 1
	}

	order := append(domain.Categories(), unknown...)
	out := make([]CategoryShare, len(order))
	for i, c := range order {
		out[i] = CategoryShare{
			Category: c,
			Count:    counts[c],
			Share:    float64(counts[c]) / float64(total),
		}
	}
	return out
}

// Priorities counts entries per known tier in rank order. Unrecognised tiers
// are grouped into a trailing row keyed by the empty tier when present.
func Priorities(entries []domain.Entry) []PriorityCount {
	counts := make(map[domain.Priority]int)
	other := 0
	for _, e := range entries {
		if e.Priority.Known() {
			counts[e.Priority]++
		} else {
			other++
		}
	}

	out := make([]PriorityCount, 0, len(domain.Priorities())+1)
	for _, p := range domain.Priorities() {
		out = append(out, PriorityCount{Priority: p, Count: counts[p]})
	}
	if other > 0 {
		out = append(out, PriorityCount{Count: other})
	}
	return out
}

// Daily returns one bucket per calendar day for the days days ending today, oldest first
func Daily(entries []domain.Entry, today domain.Day, days int) []DayCount {
	if days <= 0 {
		return []DayCount{}
	}
	perDay := make(map[domain.Day]int)
	for _, e := range entries {
		perDay[e.Date]++
	}

	out := make([]DayCount, days)
	for i := range out {
		d := today.AddDays(i - days + 1)
		out[i] = DayCount{Day: d, Label: d.Label(), Count: perDay[d]}
	}
	return out
}

// Hot returns the n most frequent tags. A tag is new when it appears on at
// least one entry dated within the last recentDays days and on no entry dated
// before that window. The window counts today, so with recentDays 3 it starts
// two days back and an entry exactly three days old is already older.
func Hot(entries []domain.Entry, freq []feed.TagCount, today domain.Day, n, recentDays int) []HotTag {
	cutoff := today.AddDays(1 - recentDays)
	recent := make(map[string]bool)
	older := make(map[string]bool)
	for _, e := range entries {
		seen := recent
		if e.Date.Before(cutoff) {
			seen = older
		}
		for _, t := range e.Tags {
			seen[t] = true
		}
	}

	top := head(freq, n)
	out := make([]HotTag, len(top))
	for i, tc := range top {
		out[i] = HotTag{
			Tag:   tc.Tag,
			Count: tc.Count,
			IsNew: recent[tc.Tag] && !older[tc.Tag],
		}
	}
	return out
}

// Span returns the oldest and newest dated entries; undated entries are ignored
func Span(entries []domain.Entry) DateRange {
	var r DateRange
	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		if r.From.IsZero() || e.Date.Before(r.From) {
			r.From = e.Date
		}
		if r.To.IsZero() || e.Date.After(r.To) {
			r.To = e.Date
		}
	}
	return r
}

func head(freq []feed.TagCount, n int) []feed.TagCount {
	if n < 0 || n > len(freq) {
		n = len(freq)
	}
	out := make([]feed.TagCount, n)
	copy(out, freq[:n])
	return out
}
