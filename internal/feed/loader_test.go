package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/soundbyte/internal/domain"
	"github.com/pbaille/soundbyte/internal/fetcher"
)

type fakeSource struct {
	healthy     bool
	entries     []domain.Entry
	fetchErr    error
	snapshot    []domain.Entry
	snapshotErr error
	release     chan struct{}

	fetches   atomic.Int32
	snapshots atomic.Int32
}

func (f *fakeSource) Health(ctx context.Context) bool { return f.healthy }

func (f *fakeSource) FetchAll(ctx context.Context) ([]domain.Entry, error) {
	f.fetches.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.entries, f.fetchErr
}

func (f *fakeSource) ReadSnapshot(ctx context.Context, location string) ([]domain.Entry, error) {
	f.snapshots.Add(1)
	return f.snapshot, f.snapshotErr
}

var sample = []domain.Entry{{ID: "a"}, {ID: "b"}}

func TestLoadFromAPI(t *testing.T) {
	src := &fakeSource{healthy: true, entries: sample}
	l := NewLoader(src, "", zerolog.Nop())
	assert.Equal(t, StateIdle, l.State())

	res := l.Load(context.Background())
	assert.Equal(t, StateLoaded, res.State)
	assert.Equal(t, OriginAPI, res.Origin)
	assert.Equal(t, sample, res.Entries)
	assert.False(t, res.Unavailable())

	again := l.Load(context.Background())
	assert.Equal(t, res, again)
	assert.Equal(t, int32(1), src.fetches.Load())
}

func TestLoadCoalescesConcurrentCallers(t *testing.T) {
	src := &fakeSource{healthy: true, entries: sample, release: make(chan struct{})}
	l := NewLoader(src, "", zerolog.Nop())

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.Load(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return src.fetches.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, StateLoading, l.State())
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.fetches.Load())
	for _, r := range results {
		assert.Equal(t, StateLoaded, r.State)
		assert.Len(t, r.Entries, 2)
	}
}

func TestLoadFallsBackToSnapshotWhenOffline(t *testing.T) {
	src := &fakeSource{healthy: false, snapshot: sample}
	res := NewLoader(src, "index.json", zerolog.Nop()).Load(context.Background())

	assert.Equal(t, StateLoaded, res.State)
	assert.Equal(t, OriginSnapshot, res.Origin)
	assert.Equal(t, int32(0), src.fetches.Load())
}

func TestLoadFallsBackToSnapshotWhenFetchFails(t *testing.T) {
	src := &fakeSource{healthy: true, fetchErr: errors.New("boom"), snapshot: sample}
	res := NewLoader(src, "index.json", zerolog.Nop()).Load(context.Background())

	assert.Equal(t, StateLoaded, res.State)
	assert.Equal(t, OriginSnapshot, res.Origin)
}

func TestLoadFailureYieldsEmptyUnavailable(t *testing.T) {
	src := &fakeSource{healthy: true, fetchErr: errors.New("boom"), snapshotErr: errors.New("missing")}
	l := NewLoader(src, "index.json", zerolog.Nop())
	res := l.Load(context.Background())

	assert.Equal(t, StateFailed, res.State)
	assert.True(t, res.Unavailable())
	assert.NotNil(t, res.Entries)
	assert.Empty(t, res.Entries)
	assert.ErrorIs(t, res.Err, fetcher.ErrUnavailable)

	// A failed load is not retried implicitly
	l.Load(context.Background())
	assert.Equal(t, int32(1), src.fetches.Load())
}

func TestLoadOfflineWithoutSnapshot(t *testing.T) {
	res := NewLoader(&fakeSource{}, "", zerolog.Nop()).Load(context.Background())
	assert.Equal(t, StateFailed, res.State)
	assert.ErrorIs(t, res.Err, fetcher.ErrUnavailable)
}

func TestReloadFetchesAgain(t *testing.T) {
	src := &fakeSource{healthy: true, entries: sample}
	l := NewLoader(src, "", zerolog.Nop())
	l.Load(context.Background())

	src.entries = []domain.Entry{{ID: "c"}}
	res := l.Reload(context.Background())
	assert.Equal(t, int32(2), src.fetches.Load())
	assert.Equal(t, []domain.Entry{{ID: "c"}}, res.Entries)
	assert.Equal(t, res, l.Result())
}

func TestStaleLoadDoesNotOverwriteReload(t *testing.T) {
	slow := &fakeSource{healthy: true, entries: []domain.Entry{{ID: "stale"}}, release: make(chan struct{})}
	l := NewLoader(slow, "", zerolog.Nop())

	done := make(chan Result)
	go func() { done <- l.Load(context.Background()) }()
	require.Eventually(t, func() bool { return slow.fetches.Load() == 1 }, time.Second, time.Millisecond)

	// Reload runs a new generation against a fresh answer while the first is blocked
	l.src = &fakeSource{healthy: true, entries: []domain.Entry{{ID: "fresh"}}}
	fresh := l.Reload(context.Background())
	assert.Equal(t, "fresh", fresh.Entries[0].ID)

	close(slow.release)
	old := <-done
	assert.True(t, old.Stale)
	assert.False(t, old.Settled())
	assert.True(t, fresh.Settled())
	assert.Greater(t, fresh.Generation, old.Generation)
	assert.Equal(t, "fresh", l.Result().Entries[0].ID)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "failed", StateFailed.String())
}
