// Package ingest classifies incoming spreadsheet rows against the catalog:
// new records are added, exact duplicates skipped, and records whose fields
// differ are staged as conflicts for later confirmation.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/shelfmatch/internal/catalog"
	"github.com/listenupapp/shelfmatch/internal/conflict"
	"github.com/listenupapp/shelfmatch/internal/domain"
	domainerrors "github.com/listenupapp/shelfmatch/internal/errors"
)

// Outcome describes how one row was classified.
type Outcome struct {
	Row         int                `json:"row"`
	ID          string             `json:"identifier"`
	Title       string             `json:"title"`
	Author      string             `json:"author"`
	Differences domain.Differences `json:"differences,omitempty"`
}

// RowError reports a row that was rejected from the batch.
type RowError struct {
	Row     int               `json:"row"`
	Code    domainerrors.Code `json:"code"`
	Message string            `json:"message"`
}

// Summary aggregates a batch.
type Summary struct {
	BatchID          string `json:"batch_id"`
	Total            int    `json:"total"`
	Added            int    `json:"added"`
	Skipped          int    `json:"skipped"`
	Conflicted       int    `json:"conflicted"`
	Rejected         int    `json:"rejected"`
	PendingConflicts int    `json:"pending_conflicts"`
	Message          string `json:"message"`
}

// Result is the classification of every row in a batch, in input order.
type Result struct {
	Added      []Outcome  `json:"added"`
	Skipped    []Outcome  `json:"skipped"`
	Conflicted []Outcome  `json:"conflicted"`
	Rejected   []RowError `json:"rejected"`
	Summary    Summary    `json:"summary"`
}

// Changes is what a batch staged, for the caller to persist.
type Changes struct {
	Inserted []*domain.Book
	Staged   []*domain.ConflictEntry
	Counter  uint64
}

// Empty reports whether the batch changed nothing.
func (c *Changes) Empty() bool {
	return len(c.Inserted) == 0 && len(c.Staged) == 0
}

// Pipeline runs batches through identity resolution and diffing.
type Pipeline struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewPipeline creates a pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{logger: logger, now: time.Now}
}

// Run processes rows in order against c and pending, mutating both.
// Records added by earlier rows are visible to later rows of the same batch.
// Stored records are never modified; differing rows only write a conflict.
func (p *Pipeline) Run(ctx context.Context, batchID string, rows []domain.Row, c *catalog.Catalog, pending *conflict.Store) (*Result, *Changes, error) {
	now := p.now()
	result := &Result{
		Added:      make([]Outcome, 0),
		Skipped:    make([]Outcome, 0),
		Conflicted: make([]Outcome, 0),
		Rejected:   make([]RowError, 0),
	}
	changes := &Changes{}
	staged := make(map[string]int)

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		n := i + 1

		identity := Resolve(row)
		if err := validateRow(n, row, identity); err != nil {
			result.Rejected = append(result.Rejected, RowError{Row: n, Code: err.Code, Message: err.Message})
			if p.logger != nil {
				p.logger.Debug("row rejected", "batch_id", batchID, "row", n, "reason", err.Message)
			}
			continue
		}

		stored, found := identity.Lookup(c)
		if !found {
			bookID := identity.Key
			if !identity.ByIdentifier {
				bookID = c.NextID()
			}
			book := domain.NewBook(bookID, row, now)
			if err := c.Insert(book); err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", n, err)
			}
			changes.Inserted = append(changes.Inserted, book)
			result.Added = append(result.Added, Outcome{Row: n, ID: book.ID, Title: book.Title(), Author: book.Author()})
			continue
		}

		diffs := Diff(stored, row)
		if len(diffs) == 0 {
			result.Skipped = append(result.Skipped, Outcome{Row: n, ID: stored.ID, Title: stored.Title(), Author: stored.Author()})
			continue
		}

		entry := &domain.ConflictEntry{
			ID:          stored.ID,
			Title:       stored.Title(),
			Author:      stored.Author(),
			Differences: diffs,
			BatchID:     batchID,
			DetectedAt:  now,
		}
		pending.Put(entry)
		if j, ok := staged[entry.ID]; ok {
			changes.Staged[j] = entry
		} else {
			staged[entry.ID] = len(changes.Staged)
			changes.Staged = append(changes.Staged, entry)
		}
		result.Conflicted = append(result.Conflicted, Outcome{
			Row:         n,
			ID:          stored.ID,
			Title:       stored.Title(),
			Author:      stored.Author(),
			Differences: diffs,
		})
	}

	changes.Counter = c.Counter()
	result.Summary = Summary{
		BatchID:          batchID,
		Total:            len(rows),
		Added:            len(result.Added),
		Skipped:          len(result.Skipped),
		Conflicted:       len(result.Conflicted),
		Rejected:         len(result.Rejected),
		PendingConflicts: pending.Len(),
	}
	result.Summary.Message = fmt.Sprintf("Processed %d rows: %d added, %d skipped (duplicates), %d conflicts, %d rejected.",
		result.Summary.Total, result.Summary.Added, result.Summary.Skipped, result.Summary.Conflicted, result.Summary.Rejected)

	if p.logger != nil {
		p.logger.Info("batch classified",
			"batch_id", batchID,
			"rows", result.Summary.Total,
			"added", result.Summary.Added,
			"skipped", result.Summary.Skipped,
			"conflicted", result.Summary.Conflicted,
			"rejected", result.Summary.Rejected,
		)
	}

	return result, changes, nil
}

// validateRow rejects rows with no usable identity: no identifier and both
// title and author blank.
func validateRow(n int, row domain.Row, identity Identity) *domainerrors.Error {
	if identity.ByIdentifier {
		return nil
	}
	_, hasTitle := row.Value(domain.FieldTitle)
	_, hasAuthor := row.Value(domain.FieldAuthor)
	if !hasTitle && !hasAuthor {
		return domainerrors.MalformedRowf("row %d: title and author are both empty", n)
	}
	return nil
}
