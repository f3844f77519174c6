// Package badgerdb implements store.Repository on a Badger key-value store.
// Records and conflicts are JSON values under prefixed keys; ordering comes
// from the position and sequence stored inside each value.
package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/store"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ store.Repository = (*Store)(nil)

// conflictRecord is the stored form of a pending conflict.
type conflictRecord struct {
	Seq   uint64                `json:"seq"`
	Entry *domain.ConflictEntry `json:"entry"`
}

// Transaction sizing. Badger caps one transaction at roughly 15% of the
// memtable; values above the threshold go to the value log and only count
// as a pointer, so a full ingestion batch commits in one transaction.
const (
	memTableSize   = 128 << 20
	valueThreshold = 256
)

func withBatchSizing(opts badger.Options) badger.Options {
	return opts.
		WithMemTableSize(memTableSize).
		WithValueThreshold(valueThreshold)
}

// Open opens or creates a Badger database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := withBatchSizing(badger.DefaultOptions(dir))
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("badger database opened", "path", dir)
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens a Badger database that lives only in memory.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	opts := withBatchSizing(badger.DefaultOptions("").WithInMemory(true))
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing badger database")
	}
	return s.db.Close()
}

// Ping reports whether the database is still open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// Load reads all records, the counter and pending conflicts.
func (s *Store) Load(ctx context.Context) (*store.Snapshot, error) {
	snap := &store.Snapshot{}
	var records []conflictRecord

	err := s.db.View(func(txn *badger.Txn) error {
		if err := scanPrefix(ctx, txn, bookPrefix, func(key, val []byte) error {
			var b domain.Book
			if err := json.Unmarshal(val, &b); err != nil {
				return store.Corruptf("%s: %v", key, err)
			}
			if b.Values == nil {
				b.Values = make(map[domain.Field]string)
			}
			snap.Books = append(snap.Books, &b)
			return nil
		}); err != nil {
			return err
		}

		if err := scanPrefix(ctx, txn, conflictPrefix, func(key, val []byte) error {
			var rec conflictRecord
			if err := json.Unmarshal(val, &rec); err != nil || rec.Entry == nil {
				return store.Corruptf("%s: %v", key, err)
			}
			records = append(records, rec)
			return nil
		}); err != nil {
			return err
		}

		counter, err := readUint(txn, counterKey)
		if err != nil {
			return err
		}
		snap.Counter = counter
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	slices.SortFunc(snap.Books, func(a, b *domain.Book) int {
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		default:
			return 0
		}
	})
	slices.SortFunc(records, func(a, b conflictRecord) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
	for _, rec := range records {
		snap.Conflicts = append(snap.Conflicts, rec.Entry)
	}
	return snap, nil
}

// Commit applies the changeset in one read-write transaction.
func (s *Store) Commit(ctx context.Context, cs *store.Changeset) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, b := range cs.Books {
			if err := setJSON(txn, bookPrefix, b.ID, b); err != nil {
				return err
			}
		}
		for _, bookID := range cs.DeleteConflicts {
			if err := txn.Delete([]byte(conflictPrefix + bookID)); err != nil {
				return fmt.Errorf("delete conflict %s: %w", bookID, err)
			}
		}

		seq, err := readUint(txn, conflictSeqKey)
		if err != nil {
			return err
		}
		for _, e := range cs.PutConflicts {
			seq++
			if err := setJSON(txn, conflictPrefix, e.ID, conflictRecord{Seq: seq, Entry: e}); err != nil {
				return err
			}
		}
		if err := txn.Set([]byte(conflictSeqKey), encodeUint(seq)); err != nil {
			return fmt.Errorf("save conflict sequence: %w", err)
		}
		if err := txn.Set([]byte(counterKey), encodeUint(cs.Counter)); err != nil {
			return fmt.Errorf("save counter: %w", err)
		}
		return nil
	})
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("commit %d books and %d conflicts: %w", len(cs.Books), len(cs.PutConflicts), store.ErrBatchTooLarge)
	}
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("changeset committed",
			"books", len(cs.Books),
			"conflicts_put", len(cs.PutConflicts),
			"conflicts_deleted", len(cs.DeleteConflicts),
		)
	}
	return nil
}

func setJSON(txn *badger.Txn, prefix, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s%s: %w", prefix, id, err)
	}
	// Badger holds on to the key slice until commit.
	if err := txn.Set([]byte(prefix+id), data); err != nil {
		return fmt.Errorf("set %s%s: %w", prefix, id, err)
	}
	return nil
}

func readUint(txn *badger.Txn, key string) (uint64, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	var n uint64
	err = item.Value(func(val []byte) error {
		v, ok := decodeUint(val)
		if !ok {
			return store.Corruptf("%s has %d bytes", key, len(val))
		}
		n = v
		return nil
	})
	return n, err
}

func scanPrefix(ctx context.Context, txn *badger.Txn, prefix string, fn func(key, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := it.Item()
		key := item.KeyCopy(nil)
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}
