// Package feed holds the loaded entry snapshot and its derived tag index.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/pbaille/soundbyte/internal/domain"
	"github.com/pbaille/soundbyte/internal/fetcher"
)

// State is the lifecycle of a Loader
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Origin names where a loaded entry set came from
type Origin string

const (
	OriginNone     Origin = ""
	OriginAPI      Origin = "api"
	OriginSnapshot Origin = "snapshot"
)

// Source is what the Loader needs from the backend client
type Source interface {
	Health(ctx context.Context) bool
	FetchAll(ctx context.Context) ([]domain.Entry, error)
	ReadSnapshot(ctx context.Context, location string) ([]domain.Entry, error)
}

// Result is the outcome of a load
type Result struct {
	Entries []domain.Entry
	State   State
	Origin  Origin
	Err     error

	// Generation counts reloads; a higher generation is newer.
	Generation int
	// Stale is set when a newer reload superseded this fetch. Entries then
	// hold whatever the loader had at the time and must not be applied.
	Stale bool
}

// Settled reports whether the result carries a finished, current entry set
func (r Result) Settled() bool {
	return !r.Stale && (r.State == StateLoaded || r.State == StateFailed)
}

// Unavailable reports whether the surrounding UI should show the offline indicator
func (r Result) Unavailable() bool {
	return r.State == StateFailed
}

// Loader fetches the entry set once and hands the same snapshot to every caller
type Loader struct {
	src      Source
	snapshot string
	log      zerolog.Logger

	group singleflight.Group

	mu     sync.Mutex
	gen    int
	result Result
}

// NewLoader creates a Loader; snapshot is the optional static fallback location
func NewLoader(src Source, snapshot string, log zerolog.Logger) *Loader {
	return &Loader{
		src:      src,
		snapshot: snapshot,
		log:      log.With().Str("component", "feed").Logger(),
		result:   Result{State: StateIdle},
	}
}

// State returns the current lifecycle state
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result.State
}

// Result returns the latest settled result without triggering a fetch
func (l *Loader) Result() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// Load returns the entry set, fetching it on first use. Concurrent calls made
// before the fetch completes share that single fetch. Once loaded or failed the
// cached result is returned until Reload is called.
func (l *Loader) Load(ctx context.Context) Result {
	l.mu.Lock()
	if l.result.State == StateLoaded || l.result.State == StateFailed {
		res := l.result
		l.mu.Unlock()
		return res
	}
	l.result.State = StateLoading
	gen := l.gen
	l.mu.Unlock()

	return l.run(ctx, gen)
}

// Reload discards the cached result and fetches again. A fetch still in flight
// from before the reload cannot overwrite the newer result.
func (l *Loader) Reload(ctx context.Context) Result {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.result = Result{State: StateLoading, Generation: gen}
	l.mu.Unlock()

	return l.run(ctx, gen)
}

func (l *Loader) run(ctx context.Context, gen int) Result {
	v, _, _ := l.group.Do(strconv.Itoa(gen), func() (any, error) {
		// A flight for this generation may have settled between the caller's
		// state check and joining the group.
		l.mu.Lock()
		if gen == l.gen && (l.result.State == StateLoaded || l.result.State == StateFailed) {
			res := l.result
			l.mu.Unlock()
			return res, nil
		}
		l.mu.Unlock()

		res := l.fetch(ctx)
		res.Generation = gen

		l.mu.Lock()
		defer l.mu.Unlock()
		if gen != l.gen {
			l.log.Debug().Int("generation", gen).Msg("discarding stale load")
			stale := l.result
			stale.Generation = gen
			stale.Stale = true
			return stale, nil
		}
		l.result = res
		return res, nil
	})
	return v.(Result)
}

func (l *Loader) fetch(ctx context.Context) Result {
	var liveErr error
	if l.src.Health(ctx) {
		entries, err := l.src.FetchAll(ctx)
		if err == nil {
			l.log.Info().Int("entries", len(entries)).Msg("loaded from backend API")
			return Result{Entries: entries, State: StateLoaded, Origin: OriginAPI}
		}
		liveErr = err
		l.log.Warn().Err(err).Msg("backend fetch failed")
	} else {
		liveErr = errors.New("backend is offline")
		l.log.Warn().Msg("backend is offline")
	}

	if l.snapshot != "" {
		entries, err := l.src.ReadSnapshot(ctx, l.snapshot)
		if err == nil {
			l.log.Info().Int("entries", len(entries)).Str("snapshot", l.snapshot).Msg("loaded from snapshot")
			return Result{Entries: entries, State: StateLoaded, Origin: OriginSnapshot}
		}
		l.log.Warn().Err(err).Str("snapshot", l.snapshot).Msg("snapshot read failed")
		liveErr = errors.Join(liveErr, err)
	}

	l.log.Error().Err(liveErr).Msg("no data available")
	return Result{
		Entries: []domain.Entry{},
		State:   StateFailed,
		Err:     fmt.Errorf("%w: %w", fetcher.ErrUnavailable, liveErr),
	}
}
