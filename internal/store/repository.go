// Package store defines the persistence contract for the catalog and its
// pending conflicts. Implementations live in the sqlite and badgerdb
// subpackages.
package store

import (
	"context"

	"github.com/listenupapp/shelfmatch/internal/domain"
)

// Repository persists catalog state. Commit must be atomic: either every
// write in the changeset becomes durable or none does.
type Repository interface {
	// Load reads the full committed state.
	Load(ctx context.Context) (*Snapshot, error)
	// Commit applies a changeset in one transaction.
	Commit(ctx context.Context, cs *Changeset) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Snapshot is the persisted state as loaded at startup.
type Snapshot struct {
	Books     []*domain.Book
	Counter   uint64
	Conflicts []*domain.ConflictEntry
}

// Changeset is the set of writes produced by one mutating operation.
type Changeset struct {
	// Books are inserted or overwritten by identifier.
	Books []*domain.Book
	// Counter is the sequential identifier counter after the operation.
	Counter uint64
	// PutConflicts are written in order, replacing any entry with the same identifier.
	PutConflicts []*domain.ConflictEntry
	// DeleteConflicts lists identifiers whose pending entries were resolved.
	DeleteConflicts []string
}

// Empty reports whether the changeset carries no record or conflict writes.
func (cs *Changeset) Empty() bool {
	return cs == nil || (len(cs.Books) == 0 && len(cs.PutConflicts) == 0 && len(cs.DeleteConflicts) == 0)
}
