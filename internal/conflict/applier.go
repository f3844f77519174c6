package conflict

import (
	"fmt"
	"strings"
	"time"

	"github.com/listenupapp/shelfmatch/internal/catalog"
	"github.com/listenupapp/shelfmatch/internal/domain"
)

// Applied is the outcome of confirming a set of identifiers.
type Applied struct {
	Updated  []string
	NotFound []string
	// Books are the rewritten records, in Updated order.
	Books []*domain.Book
}

// Apply moves the staged differences of each confirmed identifier onto the
// catalog and drops the entry from the store. Identifiers without a pending
// entry are reported in NotFound and otherwise ignored; repeating an
// identifier is therefore safe.
//
// Apply mutates c and s; callers pass clones and keep them only on success.
func Apply(c *catalog.Catalog, s *Store, ids []string, now time.Time) (*Applied, error) {
	out := &Applied{
		Updated:  make([]string, 0, len(ids)),
		NotFound: make([]string, 0),
	}

	for _, raw := range ids {
		bookID := strings.TrimSpace(raw)
		entry, ok := s.Get(bookID)
		if !ok {
			out.NotFound = append(out.NotFound, bookID)
			continue
		}

		stored, ok := c.Get(bookID)
		if !ok {
			return nil, fmt.Errorf("pending conflict %q has no catalog record", bookID)
		}

		updated := stored.Clone()
		for f, change := range entry.Differences {
			updated.Values[f] = change.New
		}
		updated.UpdatedAt = now

		if err := c.Replace(updated); err != nil {
			return nil, fmt.Errorf("apply %q: %w", bookID, err)
		}
		s.Remove(bookID)

		out.Updated = append(out.Updated, bookID)
		out.Books = append(out.Books, updated)
	}
	return out, nil
}
