// Package collections manages user-curated, named sets of entry references.
package collections

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pbaille/soundbyte/internal/domain"
	"github.com/pbaille/soundbyte/internal/store"
)

// DefaultKey is the storage key holding the serialized collection set
const DefaultKey = "soundbyte-collections"

// document is the persisted shape
type document struct {
	Collections []domain.Collection `json:"collections"`
}

// Store keeps collections in memory and writes the whole set through to a KV
// after every change. Unknown ids are ignored by every operation.
type Store struct {
	kv  store.KV
	key string
	log zerolog.Logger

	mu          sync.Mutex
	collections []domain.Collection
	newID       func() string
}

// Open reads the collection set from kv once. Missing or malformed data is
// logged and treated as an empty set.
func Open(kv store.KV, key string, log zerolog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		kv:    kv,
		key:   key,
		log:   log.With().Str("component", "collections").Logger(),
		newID: func() string { return "col-" + uuid.NewString() },
	}
	s.collections = s.load()
	return s
}

func (s *Store) load() []domain.Collection {
	raw, err := s.kv.Get(s.key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Err(err).Msg("reading collections failed, starting empty")
		}
		return []domain.Collection{}
	}
	if len(raw) == 0 {
		return []domain.Collection{}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.log.Warn().Err(err).Msg("malformed collections document, starting empty")
		return []domain.Collection{}
	}

	out := make([]domain.Collection, 0, len(doc.Collections))
	for _, c := range doc.Collections {
		if c.ID == "" {
			continue
		}
		c.EntryIDs = dedupe(c.EntryIDs)
		out = append(out, c)
	}
	return out
}

// commit persists next and only then makes it current, so a failed write
// leaves the previous set in place. Must be called with mu held.
func (s *Store) commit(next []domain.Collection) error {
	data, err := json.Marshal(document{Collections: next})
	if err != nil {
		return fmt.Errorf("encode collections: %w", err)
	}
	if err := s.kv.Set(s.key, data); err != nil {
		return fmt.Errorf("persist collections: %w", err)
	}
	s.collections = next
	return nil
}

// snapshot copies the current set so a mutation can be staged before commit
func (s *Store) snapshot() []domain.Collection {
	out := make([]domain.Collection, len(s.collections))
	for i, c := range s.collections {
		out[i] = c.Clone()
	}
	return out
}

// List returns a copy of every collection in creation order
func (s *Store) List() []domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Get returns a copy of the collection with the given id
func (s *Store) Get(id string) (domain.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		return s.collections[i].Clone(), true
	}
	return domain.Collection{}, false
}

// Create adds an empty collection and returns its id. A name that is blank
// after trimming creates nothing and returns "".
func (s *Store) Create(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := domain.Collection{ID: s.newID(), Name: name, EntryIDs: []string{}}
	if err := s.commit(append(s.snapshot(), c)); err != nil {
		return "", err
	}
	s.log.Debug().Str("id", c.ID).Str("name", name).Msg("collection created")
	return c.ID, nil
}

// Rename changes a collection's name; blank names and unknown ids are ignored
func (s *Store) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 || s.collections[i].Name == name {
		return nil
	}
	next := s.snapshot()
	next[i].Name = name
	return s.commit(next)
}

// Delete removes a collection
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil
	}
	next := s.snapshot()
	return s.commit(append(next[:i], next[i+1:]...))
}

// AddEntry appends entryID to the collection unless it is already there
func (s *Store) AddEntry(collectionID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collectionID)
	if i < 0 || entryID == "" || s.collections[i].Has(entryID) {
		return nil
	}
	next := s.snapshot()
	next[i].EntryIDs = append(next[i].EntryIDs, entryID)
	return s.commit(next)
}

// RemoveEntry drops entryID from the collection if present
func (s *Store) RemoveEntry(collectionID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collectionID)
	if i < 0 || !s.collections[i].Has(entryID) {
		return nil
	}
	ids := s.collections[i].EntryIDs
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != entryID {
			kept = append(kept, id)
		}
	}
	next := s.snapshot()
	next[i].EntryIDs = kept
	return s.commit(next)
}

// Contains reports whether the collection holds entryID
func (s *Store) Contains(collectionID, entryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collectionID)
	return i >= 0 && s.collections[i].Has(entryID)
}

// Entries resolves a collection against the loaded entry set, in feed order.
// References to entries that are no longer in the feed are skipped.
func (s *Store) Entries(id string, all []domain.Entry) []domain.Entry {
	c, ok := s.Get(id)
	if !ok {
		return []domain.Entry{}
	}
	out := make([]domain.Entry, 0, len(c.EntryIDs))
	for _, e := range all {
		if c.Has(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) index(id string) int {
	for i, c := range s.collections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
