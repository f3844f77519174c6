package ingest

import (
	"github.com/listenupapp/shelfmatch/internal/catalog"
	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/normalize"
)

// Identity is the dedup key of an incoming row.
type Identity struct {
	Key          string
	ByIdentifier bool
}

// Resolve computes the identity of a row: its explicit identifier when one
// is present, otherwise the normalized title+author pair.
func Resolve(row domain.Row) Identity {
	if bookID := row.Identifier(); bookID != "" {
		return Identity{Key: bookID, ByIdentifier: true}
	}
	title, _ := row.Value(domain.FieldTitle)
	author, _ := row.Value(domain.FieldAuthor)
	return Identity{Key: normalize.TitleAuthorKey(title, author)}
}

// Lookup finds the stored record sharing the identity.
func (i Identity) Lookup(c *catalog.Catalog) (*domain.Book, bool) {
	if i.ByIdentifier {
		return c.Get(i.Key)
	}
	return c.FindByTitleAuthor(i.Key)
}
