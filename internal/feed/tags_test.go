package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pbaille/soundbyte/internal/domain"
)

func TestTagFrequency(t *testing.T) {
	entries := []domain.Entry{
		{ID: "1", Tags: []string{"cli", "rust"}},
		{ID: "2", Tags: []string{"webgpu", "rust"}},
		{ID: "3", Tags: []string{"webgpu", "ai"}},
		{ID: "4"},
	}
	assert.Equal(t, []TagCount{
		{Tag: "rust", Count: 2},
		{Tag: "webgpu", Count: 2},
		{Tag: "cli", Count: 1},
		{Tag: "ai", Count: 1},
	}, TagFrequency(entries))
}

func TestTagFrequencyEmpty(t *testing.T) {
	got := TagFrequency(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"rust", "ai"}, Names([]TagCount{{Tag: "rust", Count: 3}, {Tag: "ai", Count: 1}}))
}
