// Package history persists translation results across restarts. The whole
// mapping from message id to entry lives in one key-value blob, read and
// written as a unit; the in-memory copy hydrates from the store exactly once
// per process, lazily on first use.
package history

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matty/chattrans/store"
)

// storageKey is the single KV entry holding the whole mapping.
const storageKey = "translations"

// Entry is one saved translation, keyed externally by message id. Entries
// are overwritten wholesale on re-translation, never mutated in place.
type Entry struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	Model          string `json:"model,omitempty"`
	Timestamp      int64  `json:"timestamp"` // epoch millis, stamped by Save
}

// Saved pairs an entry with its message id, for listings.
type Saved struct {
	ID string `json:"id"`
	Entry
}

// Store keeps the mapping in memory and mirrors every change into the KV.
// Mutations issued before the first hydration completes serialize behind one
// shared load rather than racing it.
type Store struct {
	kv store.KV

	group  singleflight.Group
	loaded atomic.Bool

	mu      sync.RWMutex
	entries map[string]Entry

	now func() time.Time // test hook
}

// New creates a store over kv. Nothing is read until first use.
func New(kv store.KV) *Store {
	return &Store{kv: kv, entries: make(map[string]Entry), now: time.Now}
}

// Get is cache-only: before the first hydration it reports absent rather
// than blocking. Use All or Count when hydration is acceptable.
func (s *Store) Get(id string) (Entry, bool) {
	if !s.loaded.Load() {
		return Entry{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Save upserts the entry for id, stamping a fresh timestamp, and persists
// the whole mapping.
func (s *Store) Save(ctx context.Context, id string, e Entry) error {
	if err := s.hydrate(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Timestamp = s.now().UnixMilli()
	s.entries[id] = e
	return s.persistLocked(ctx)
}

// Delete removes the entry for id and persists.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.hydrate(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return s.persistLocked(ctx)
}

// Clear drops every entry and removes the blob from the KV.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.hydrate(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	if err := s.kv.Delete(ctx, storageKey); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// All returns every saved translation, newest first (id as tiebreak).
func (s *Store) All(ctx context.Context) ([]Saved, error) {
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Saved, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, Saved{ID: id, Entry: e})
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Saved) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Count returns the number of saved translations.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.hydrate(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// hydrate loads the blob exactly once; concurrent callers share the one
// in-flight load. An unreadable blob logs and starts empty instead of
// wedging every later operation.
func (s *Store) hydrate(ctx context.Context) error {
	if s.loaded.Load() {
		return nil
	}
	_, err, _ := s.group.Do(storageKey, func() (any, error) {
		if s.loaded.Load() {
			return nil, nil
		}
		data, err := s.kv.Get(ctx, storageKey)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("load history: %w", err)
		}

		m := make(map[string]Entry)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &m); err != nil {
				slog.Warn("history blob unreadable, starting empty", "error", err)
				m = make(map[string]Entry)
			}
		}

		s.mu.Lock()
		s.entries = m
		s.mu.Unlock()
		s.loaded.Store(true)
		return nil, nil
	})
	return err
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, storageKey, data); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
