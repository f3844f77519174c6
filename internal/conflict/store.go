// Package conflict stages field-level differences found during ingestion and
// applies them to the catalog once they are confirmed.
package conflict

import (
	"slices"

	"github.com/listenupapp/shelfmatch/internal/domain"
)

// Store holds at most one pending entry per identifier, in the order the
// entries were last written. Like catalog.Catalog it is not safe for
// concurrent use; writers work on a Clone.
type Store struct {
	order   []string
	entries map[string]*domain.ConflictEntry
}

// NewStore returns a store seeded with entries, e.g. from persistence.
// A later entry for the same identifier replaces an earlier one.
func NewStore(entries ...*domain.ConflictEntry) *Store {
	s := &Store{entries: make(map[string]*domain.ConflictEntry, len(entries))}
	for _, e := range entries {
		s.Put(e)
	}
	return s
}

// Put writes e, entirely replacing any pending entry for the same identifier.
// It reports whether an entry was replaced.
func (s *Store) Put(e *domain.ConflictEntry) bool {
	_, replaced := s.entries[e.ID]
	if replaced {
		s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == e.ID })
	}
	s.order = append(s.order, e.ID)
	s.entries[e.ID] = e
	return replaced
}

// Get returns the pending entry for bookID.
func (s *Store) Get(bookID string) (*domain.ConflictEntry, bool) {
	e, ok := s.entries[bookID]
	return e, ok
}

// Remove drops the pending entry for bookID and reports whether one existed.
func (s *Store) Remove(bookID string) bool {
	if _, ok := s.entries[bookID]; !ok {
		return false
	}
	delete(s.entries, bookID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == bookID })
	return true
}

// List returns copies of all pending entries in write order.
func (s *Store) List() []*domain.ConflictEntry {
	out := make([]*domain.ConflictEntry, 0, len(s.order))
	for _, bookID := range s.order {
		out = append(out, s.entries[bookID].Clone())
	}
	return out
}

// Len returns the number of pending entries.
func (s *Store) Len() int {
	return len(s.order)
}

// Clone returns an independent copy. Entries are shared; they are replaced,
// never edited.
func (s *Store) Clone() *Store {
	entries := make(map[string]*domain.ConflictEntry, len(s.entries))
	for k, v := range s.entries {
		entries[k] = v
	}
	return &Store{order: slices.Clone(s.order), entries: entries}
}
