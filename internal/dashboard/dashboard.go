// Package dashboard wires the entry snapshot through search, filter and sort,
// and keeps the derived views cached until their inputs change.
package dashboard

import (
	"sync"
	"time"

	"github.com/pbaille/soundbyte/internal/domain"
	"github.com/pbaille/soundbyte/internal/feed"
	"github.com/pbaille/soundbyte/internal/filter"
	"github.com/pbaille/soundbyte/internal/search"
	"github.com/pbaille/soundbyte/internal/sorting"
	"github.com/pbaille/soundbyte/internal/trends"
)

// Clock supplies the current time; "today" is its calendar day
type Clock func() time.Time

// State is the user's current view selection
type State struct {
	Query    string          `json:"query"`
	Criteria filter.Criteria `json:"criteria"`
	Sort     sorting.Mode    `json:"sort"`
}

// View is the ordered, filtered result list for a State
type View struct {
	Entries       []domain.Match `json:"entries"`
	Count         int            `json:"count"`
	Total         int            `json:"total"`
	EffectiveSort sorting.Mode   `json:"sort"`
}

// Group is one day of the timeline
type Group struct {
	Day     domain.Day     `json:"date"`
	Entries []domain.Match `json:"entries"`
}

// Dashboard holds one immutable entry snapshot plus everything derived from it
type Dashboard struct {
	clock Clock
	opts  trends.Options

	mu      sync.Mutex
	entries []domain.Entry
	index   *search.Index
	tags    []feed.TagCount

	report    *trends.Report
	reportDay domain.Day
}

// New creates an empty dashboard; a nil clock means time.Now
func New(clock Clock, opts trends.Options) *Dashboard {
	if clock == nil {
		clock = time.Now
	}
	d := &Dashboard{clock: clock, opts: opts}
	d.SetEntries(nil)
	return d
}

// SetEntries swaps in a new entry set. The search index and tag table are
// rebuilt here and only here; queries never rebuild them.
func (d *Dashboard) SetEntries(entries []domain.Entry) {
	if entries == nil {
		entries = []domain.Entry{}
	}
	index := search.Build(entries)
	tags := feed.TagFrequency(entries)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = entries
	d.index = index
	d.tags = tags
	d.report = nil
}

// Entries returns the current snapshot
func (d *Dashboard) Entries() []domain.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entries
}

// Entry looks an entry up by id
func (d *Dashboard) Entry(id string) (domain.Entry, bool) {
	for _, e := range d.Entries() {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Entry{}, false
}

// Today is the clock's current calendar day
func (d *Dashboard) Today() domain.Day {
	return domain.DayOf(d.clock())
}

// View runs search, then filters, then sort
func (d *Dashboard) View(s State) View {
	d.mu.Lock()
	index, total := d.index, len(d.entries)
	d.mu.Unlock()

	active := search.Active(s.Query)
	matches := index.Search(s.Query)
	matches = filter.Apply(matches, s.Criteria, d.Today())
	matches = sorting.Sort(matches, s.Sort, active)

	return View{
		Entries:       matches,
		Count:         len(matches),
		Total:         total,
		EffectiveSort: sorting.Effective(s.Sort, active),
	}
}

// Timeline groups a view's entries by day, keeping the view's order; a day
// appears where its first entry does.
func Timeline(v View) []Group {
	groups := make([]Group, 0)
	at := make(map[domain.Day]int)
	for _, m := range v.Entries {
		i, ok := at[m.Entry.Date]
		if !ok {
			i = len(groups)
			at[m.Entry.Date] = i
			groups = append(groups, Group{Day: m.Entry.Date})
		}
		groups[i].Entries = append(groups[i].Entries, m)
	}
	return groups
}

// Tags returns the tag frequency table of the whole snapshot
func (d *Dashboard) Tags() []feed.TagCount {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tags
}

// Suggest returns tag completions for input, most frequent first on ties
func (d *Dashboard) Suggest(input string, limit int) []string {
	return search.Suggest(feed.Names(d.Tags()), input, limit)
}

// Trends returns the trend report over the full snapshot. It is recomputed
// only when the entries change or the day rolls over.
func (d *Dashboard) Trends() trends.Report {
	today := d.Today()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.report == nil || !d.reportDay.Equal(today) {
		r := trends.Aggregate(d.entries, today, d.opts)
		d.report = &r
		d.reportDay = today
	}
	return *d.report
}
