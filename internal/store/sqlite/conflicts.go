package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/store"
)

func (s *Store) loadConflicts(ctx context.Context) ([]*domain.ConflictEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT book_id, title, author, differences, batch_id, detected_at
		FROM conflicts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query conflicts: %w", err)
	}
	defer rows.Close()

	var out []*domain.ConflictEntry
	for rows.Next() {
		var (
			e          domain.ConflictEntry
			diffs      string
			detectedAt string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Author, &diffs, &e.BatchID, &detectedAt); err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		if err := json.Unmarshal([]byte(diffs), &e.Differences); err != nil {
			return nil, store.Corruptf("conflict %s differences: %v", e.ID, err)
		}
		if e.DetectedAt, err = parseTime(detectedAt); err != nil {
			return nil, store.Corruptf("conflict %s detected_at %q", e.ID, detectedAt)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conflicts: %w", err)
	}
	return out, nil
}

// upsertConflict writes e with a sequence number above every existing entry,
// so load order follows write order.
func upsertConflict(ctx context.Context, tx *sql.Tx, e *domain.ConflictEntry) error {
	diffs, err := json.Marshal(e.Differences)
	if err != nil {
		return fmt.Errorf("marshal differences %s: %w", e.ID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO conflicts (book_id, seq, title, author, differences, batch_id, detected_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM conflicts), ?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			seq = excluded.seq,
			title = excluded.title,
			author = excluded.author,
			differences = excluded.differences,
			batch_id = excluded.batch_id,
			detected_at = excluded.detected_at`,
		e.ID, e.Title, e.Author, string(diffs), e.BatchID, formatTime(e.DetectedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert conflict %s: %w", e.ID, err)
	}
	return nil
}
