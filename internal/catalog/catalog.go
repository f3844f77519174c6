// Package catalog holds the committed set of book records in insertion order,
// indexed by identifier and by normalized title+author.
//
// A Catalog is not safe for concurrent use. Writers work on a Clone and the
// owner swaps it in once the change is durable; records are never mutated in
// place, so a clone can share record pointers with its source.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/id"
	"github.com/listenupapp/shelfmatch/internal/normalize"
)

// ErrDuplicateID is returned when inserting a record whose identifier is taken.
var ErrDuplicateID = errors.New("identifier already in catalog")

// Catalog is an ordered identifier → record mapping.
type Catalog struct {
	books   []*domain.Book
	byID    map[string]*domain.Book
	byTitle map[string]string // title+author key -> identifier of the first record with it
	counter uint64            // last sequential identifier handed out
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		byID:    make(map[string]*domain.Book),
		byTitle: make(map[string]string),
	}
}

// Restore rebuilds a catalog from persisted records. Records are ordered by
// Position; the counter is raised past any numeric identifier already present.
func Restore(books []*domain.Book, counter uint64) (*Catalog, error) {
	c := New()
	c.counter = counter

	sorted := slices.Clone(books)
	slices.SortStableFunc(sorted, func(a, b *domain.Book) int {
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		default:
			return 0
		}
	})

	for _, b := range sorted {
		if _, exists := c.byID[b.ID]; exists {
			return nil, fmt.Errorf("restore %q: %w", b.ID, ErrDuplicateID)
		}
		c.append(b)
	}
	return c, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.books)
}

// Counter returns the last sequential identifier value handed out.
func (c *Catalog) Counter() uint64 {
	return c.counter
}

// Get returns the record with the given identifier.
func (c *Catalog) Get(bookID string) (*domain.Book, bool) {
	b, ok := c.byID[bookID]
	return b, ok
}

// FindByTitleAuthor returns the record whose normalized title+author equals key.
func (c *Catalog) FindByTitleAuthor(key string) (*domain.Book, bool) {
	bookID, ok := c.byTitle[key]
	if !ok {
		return nil, false
	}
	return c.Get(bookID)
}

// Books returns the records in insertion order. The slice is a copy; the
// records must be treated as read-only.
func (c *Catalog) Books() []*domain.Book {
	return slices.Clone(c.books)
}

// NextID hands out the next unused sequential identifier. Values are never
// reused.
func (c *Catalog) NextID() string {
	for {
		c.counter++
		candidate := id.Sequential(c.counter)
		if _, taken := c.byID[candidate]; !taken {
			return candidate
		}
	}
}

// Insert appends a new record and assigns its position.
func (c *Catalog) Insert(b *domain.Book) error {
	if b.ID == "" {
		return errors.New("insert: empty identifier")
	}
	if _, exists := c.byID[b.ID]; exists {
		return fmt.Errorf("insert %q: %w", b.ID, ErrDuplicateID)
	}
	b.Position = 1
	if n := len(c.books); n > 0 {
		b.Position = c.books[n-1].Position + 1
	}
	c.append(b)
	return nil
}

// Replace swaps the stored record for b, keeping its position. A key shared
// by several records always belongs to the earliest one, as after Restore.
func (c *Catalog) Replace(b *domain.Book) error {
	old, ok := c.byID[b.ID]
	if !ok {
		return fmt.Errorf("replace %q: not in catalog", b.ID)
	}
	b.Position = old.Position

	idx := slices.Index(c.books, old)
	c.books[idx] = b
	c.byID[b.ID] = b

	oldKey := normalize.TitleAuthorKey(old.Title(), old.Author())
	newKey := normalize.TitleAuthorKey(b.Title(), b.Author())
	if oldKey != newKey {
		if c.byTitle[oldKey] == b.ID {
			delete(c.byTitle, oldKey)
			c.reindex(oldKey)
		}
		c.reindex(newKey)
	}
	return nil
}

// Clone returns a copy whose indexes and ordering can be changed without
// affecting c.
func (c *Catalog) Clone() *Catalog {
	// Clones of the books slice must not share a backing array, or an
	// append on one catalog could overwrite a slot visible to the other.
	books := make([]*domain.Book, len(c.books), len(c.books)+8)
	copy(books, c.books)
	byID := make(map[string]*domain.Book, len(c.byID))
	for k, v := range c.byID {
		byID[k] = v
	}
	byTitle := make(map[string]string, len(c.byTitle))
	for k, v := range c.byTitle {
		byTitle[k] = v
	}
	return &Catalog{books: books, byID: byID, byTitle: byTitle, counter: c.counter}
}

func (c *Catalog) append(b *domain.Book) {
	c.books = append(c.books, b)
	c.byID[b.ID] = b
	key := normalize.TitleAuthorKey(b.Title(), b.Author())
	if _, taken := c.byTitle[key]; !taken {
		c.byTitle[key] = b.ID
	}
	if n, ok := id.ParseSequential(b.ID); ok && n > c.counter {
		c.counter = n
	}
}

// reindex points key at the earliest remaining record that carries it.
func (c *Catalog) reindex(key string) {
	for _, b := range c.books {
		if normalize.TitleAuthorKey(b.Title(), b.Author()) == key {
			c.byTitle[key] = b.ID
			return
		}
	}
}
