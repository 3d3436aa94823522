package trends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/soundbyte/internal/domain"
	"github.com/pbaille/soundbyte/internal/feed"
)

var today = domain.MustDay("2024-06-10")

func entry(id, date string, cat domain.Category, p domain.Priority, tags ...string) domain.Entry {
	return domain.Entry{ID: id, Date: domain.MustDay(date), Category: cat, Priority: p, Tags: tags}
}

func TestHotTagNewOnlyWhenConfinedToRecentWindow(t *testing.T) {
	entries := []domain.Entry{
		entry("a", "2024-06-09", domain.CategoryAIInfra, domain.PriorityHigh, "webgpu", "rust"),
		entry("b", "2024-05-01", domain.CategorySoftware, domain.PriorityLow, "rust"),
		entry("c", "2024-06-07", domain.CategorySoftware, domain.PriorityLow, "edge"),
		entry("d", "2024-06-06", domain.CategorySoftware, domain.PriorityLow, "stale"),
		entry("e", "2024-06-08", domain.CategoryMusicTech, domain.PriorityLow, "npu"),
	}
	hot := Hot(entries, feed.TagFrequency(entries), today, 10, 3)
	require.Len(t, hot, 5)

	byTag := make(map[string]HotTag)
	for _, h := range hot {
		byTag[h.Tag] = h
	}
	assert.Equal(t, HotTag{Tag: "rust", Count: 2, IsNew: false}, hot[0])
	assert.True(t, byTag["webgpu"].IsNew)
	assert.True(t, byTag["npu"].IsNew)
	assert.False(t, byTag["edge"].IsNew, "exactly three days ago is before the window")
	assert.False(t, byTag["stale"].IsNew)
}

func TestHotTagsLimitedToTopN(t *testing.T) {
	entries := []domain.Entry{
		entry("a", "2024-06-09", "", "", "x", "y", "z"),
		entry("b", "2024-06-09", "", "", "y", "z"),
		entry("c", "2024-06-09", "", "", "z"),
	}
	hot := Hot(entries, feed.TagFrequency(entries), today, 2, 3)
	require.Len(t, hot, 2)
	assert.Equal(t, "z", hot[0].Tag)
	assert.Equal(t, "y", hot[1].Tag)
}

func TestDaily(t *testing.T) {
	entries := []domain.Entry{
		entry("a", "2024-06-10", "", ""),
		entry("b", "2024-06-10", "", ""),
		entry("c", "2024-05-28", "", ""),
		entry("d", "2024-05-27", "", ""),
		entry("e", "2024-06-11", "", ""),
	}
	days := Daily(entries, today, 14)
	require.Len(t, days, 14)
	assert.Equal(t, domain.MustDay("2024-05-28"), days[0].Day)
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, "5/28", days[0].Label)
	assert.Equal(t, today, days[13].Day)
	assert.Equal(t, 2, days[13].Count)

	sum := 0
	for _, d := range days {
		sum += d.Count
	}
	assert.Equal(t, 3, sum)
}

func TestCategories(t *testing.T) {
	entries := []domain.Entry{
		entry("a", "2024-06-10", domain.CategoryAIInfra, ""),
		entry("b", "2024-06-10", domain.CategoryAIInfra, ""),
		entry("c", "2024-06-10", domain.Category("biotech"), ""),
		entry("d", "2024-06-10", domain.CategoryMusicTech, ""),
	}
	got := Categories(entries)
	require.Len(t, got, 5)
	assert.Equal(t, CategoryShare{Category: domain.CategorySoftware, Count: 0, Share: 0}, got[0])
	assert.Equal(t, CategoryShare{Category: domain.CategoryAIInfra, Count: 2, Share: 0.5}, got[1])
	assert.Equal(t, domain.Category("biotech"), got[4].Category)
	assert.InDelta(t, 0.25, got[4].Share, 1e-9)
}

func TestCategoriesEmptySet(t *testing.T) {
	got := Categories(nil)
	require.Len(t, got, len(domain.Categories()))
	for _, c := range got {
		assert.Zero(t, c.Count)
		assert.Zero(t, c.Share)
	}
}

func TestPriorities(t *testing.T) {
	entries := []domain.Entry{
		entry("a", "2024-06-10", "", domain.PriorityHigh),
		entry("b", "2024-06-10", "", domain.PriorityHigh),
		entry("c", "2024-06-10", "", domain.Priority("urgent")),
	}
	got := Priorities(entries)
	require.Len(t, got, 6)
	assert.Equal(t, PriorityCount{Priority: domain.PriorityHigh, Count: 2}, got[1])
	assert.Equal(t, PriorityCount{Count: 1}, got[5])
}

func TestAggregate(t *testing.T) {
	entries := []domain.Entry{
		entry("a", "2024-06-01", domain.CategorySoftware, domain.PriorityHigh, "rust", "cli"),
		entry("b", "2024-06-02", domain.CategoryAIInfra, domain.PriorityParadigmShift, "rust"),
		{ID: "undated", Tags: []string{"misc"}},
	}
	r := Aggregate(entries, today, DefaultOptions())

	assert.Equal(t, 3, r.Total)
	assert.Equal(t, []feed.TagCount{{Tag: "rust", Count: 2}, {Tag: "cli", Count: 1}, {Tag: "misc", Count: 1}}, r.TagFrequency)
	assert.Equal(t, r.TagFrequency, r.TopTags)
	assert.Len(t, r.Daily, 14)
	assert.Len(t, r.HotTags, 3)
	assert.Equal(t, DateRange{From: domain.MustDay("2024-06-01"), To: domain.MustDay("2024-06-02")}, r.DateRange)
}

func TestAggregateEmpty(t *testing.T) {
	r := Aggregate(nil, today, DefaultOptions())
	assert.Zero(t, r.Total)
	assert.Empty(t, r.TagFrequency)
	assert.Empty(t, r.HotTags)
	assert.Len(t, r.Daily, 14)
	assert.True(t, r.DateRange.From.IsZero())
}
