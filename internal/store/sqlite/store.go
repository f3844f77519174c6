// Package sqlite implements store.Repository on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/listenupapp/shelfmatch/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const counterKey = "next_sequential_id"

// Store provides SQLite-backed persistence for the catalog.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.Repository = (*Store)(nil)

// Open creates or opens a SQLite store at the given path.
// It configures WAL mode, sets pragmas, and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	// Per-connection pragmas go in the DSN so every pooled connection gets them.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("sqlite database opened", "path", path)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load reads every record, the identifier counter and all pending conflicts.
func (s *Store) Load(ctx context.Context) (*store.Snapshot, error) {
	books, err := s.loadBooks(ctx)
	if err != nil {
		return nil, err
	}
	conflicts, err := s.loadConflicts(ctx)
	if err != nil {
		return nil, err
	}
	counter, err := s.loadCounter(ctx)
	if err != nil {
		return nil, err
	}
	return &store.Snapshot{Books: books, Counter: counter, Conflicts: conflicts}, nil
}

// Commit writes a changeset in a single transaction.
func (s *Store) Commit(ctx context.Context, cs *store.Changeset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, b := range cs.Books {
		if err := upsertBook(ctx, tx, b); err != nil {
			return err
		}
	}
	for _, bookID := range cs.DeleteConflicts {
		if _, err := tx.ExecContext(ctx, `DELETE FROM conflicts WHERE book_id = ?`, bookID); err != nil {
			return fmt.Errorf("delete conflict %s: %w", bookID, err)
		}
	}
	for _, e := range cs.PutConflicts {
		if err := upsertConflict(ctx, tx, e); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		counterKey, strconv.FormatUint(cs.Counter, 10),
	); err != nil {
		return fmt.Errorf("save counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
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

func (s *Store) loadCounter(ctx context.Context) (uint64, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, counterKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load counter: %w", err)
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, store.Corruptf("counter %q", raw)
	}
	return n, nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString returns a sql.NullString, invalid for the empty string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
