package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/soundbyte/internal/domain"
)

func fixture() []domain.Entry {
	return []domain.Entry{
		{ID: "a", Title: "Rust CLI toolkit", Summary: "Building command line apps", Tags: []string{"rust", "cli"}},
		{ID: "b", Title: "GPU inference server", Summary: "Serving models written in Rust", Tags: []string{"inference"}},
		{ID: "c", Title: "Modular synths", Summary: "Eurorack news", Tags: []string{"synth", "rust"}},
		{ID: "d", Title: "Founder notes", Summary: "On hiring", Tags: []string{"hiring"}},
	}
}

func ids(ms []domain.Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Entry.ID
	}
	return out
}

func TestSearchBlankQueryReturnsEverything(t *testing.T) {
	idx := Build(fixture())
	for _, q := range []string{"", "   ", "\t\n"} {
		got := idx.Search(q)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(got))
		for _, m := range got {
			assert.Zero(t, m.Score)
		}
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	idx := Build(fixture())
	assert.Equal(t, ids(idx.Search("rust")), ids(idx.Search("RuSt")))
}

func TestSearchTitleOutranksSummaryAndTags(t *testing.T) {
	idx := Build(fixture())
	got := idx.Search("rust")
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Entry.ID, "title match ranks first")
	assert.ElementsMatch(t, []string{"b", "c"}, ids(got[1:]))
	assert.Less(t, got[0].Score, got[1].Score)
}

func TestSearchToleratesTypos(t *testing.T) {
	idx := Build(fixture())
	got := idx.Search("infrence")
	require.NotEmpty(t, got)
	assert.Equal(t, "b", got[0].Entry.ID)
	assert.Greater(t, got[0].Score, 0.0)
}

func TestSearchNoMatch(t *testing.T) {
	idx := Build(fixture())
	assert.Empty(t, idx.Search("zxqv zxqv"))
}

func TestSearchScoresAscending(t *testing.T) {
	idx := Build(fixture())
	got := idx.Search("synth")
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestFieldScore(t *testing.T) {
	assert.Equal(t, 0.0, fieldScore([]rune("cli"), []rune("rust cli toolkit")))
	assert.Equal(t, 1.0, fieldScore([]rune("cli"), nil))
	assert.InDelta(t, 0.2, fieldScore([]rune("synth"), []rune("modular synht")), 1e-9)
	assert.Greater(t, fieldScore([]rune("kubernetes"), []rune("hiring")), Threshold)
}

func TestSuggest(t *testing.T) {
	tags := []string{"rust", "ai", "webgpu", "Rustacean"}

	assert.Equal(t, []string{"rust", "ai"}, Suggest(tags, " ", 2))
	assert.Equal(t, tags, Suggest(tags, "", 0))

	got := Suggest(tags, "rst", 10)
	assert.Contains(t, got, "rust")
	assert.Contains(t, got, "Rustacean")
	assert.NotContains(t, got, "ai")

	assert.Empty(t, Suggest(tags, "zzz", 10))
}
