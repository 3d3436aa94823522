package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/soundbyte/internal/domain"
	"github.com/pbaille/soundbyte/internal/filter"
	"github.com/pbaille/soundbyte/internal/sorting"
)

func TestViewFlagsState(t *testing.T) {
	f := viewFlags{query: "rust", category: "ai-infra", priority: filter.All, window: "week", sort: "relevance"}
	state, err := f.state()
	require.NoError(t, err)
	assert.Equal(t, "rust", state.Query)
	assert.Equal(t, domain.CategoryAIInfra, state.Criteria.Category)
	assert.Equal(t, filter.WindowWeek, state.Criteria.Window)
	assert.Equal(t, sorting.ModeRelevance, state.Sort)

	_, err = (&viewFlags{window: "yesterday"}).state()
	require.Error(t, err)
	_, err = (&viewFlags{sort: "random"}).state()
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "line one line two", truncate("line one\nline two", 40))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "新版...", truncate("新版本發布了", 5))
}
