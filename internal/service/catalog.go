// Package service provides the business logic layer: it owns the committed
// catalog and pending conflicts and coordinates ingestion, confirmation and
// recommendations with persistence.
package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/listenupapp/shelfmatch/internal/catalog"
	"github.com/listenupapp/shelfmatch/internal/conflict"
	"github.com/listenupapp/shelfmatch/internal/domain"
	domainerrors "github.com/listenupapp/shelfmatch/internal/errors"
	"github.com/listenupapp/shelfmatch/internal/id"
	"github.com/listenupapp/shelfmatch/internal/ingest"
	"github.com/listenupapp/shelfmatch/internal/recommend"
	"github.com/listenupapp/shelfmatch/internal/store"
)

// ConfirmResult reports the outcome of a confirmation call.
type ConfirmResult struct {
	Updated            []string `json:"updated"`
	NotFound           []string `json:"not_found"`
	RemainingConflicts int      `json:"remaining_conflicts"`
}

// ListParams selects a page of the catalog listing.
type ListParams struct {
	Offset int // Records to skip
	Limit  int // Page size; 0 returns everything after Offset
}

// Validate checks and corrects list parameters.
func (p *ListParams) Validate() {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit < 0 {
		p.Limit = 0
	}
	if p.Limit > 1000 {
		p.Limit = 1000
	}
}

// Page is one page of the catalog listing.
type Page struct {
	Items   []*domain.Book `json:"items"`
	Total   int            `json:"total"`
	HasMore bool           `json:"has_more"`
}

// Health summarises service state.
type Health struct {
	Books            int   `json:"books"`
	PendingConflicts int   `json:"pending_conflicts"`
	StorageErr       error `json:"-"`
}

// CatalogService orchestrates catalog operations.
//
// Mutating calls stage their work on clones of the catalog and conflict
// store, commit the resulting changeset, and only then swap the clones in.
// Readers therefore see either the state before or after a whole call.
type CatalogService struct {
	repo     store.Repository
	pipeline *ingest.Pipeline
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	catalog   *catalog.Catalog
	conflicts *conflict.Store
}

// NewCatalogService loads the persisted state from repo.
func NewCatalogService(ctx context.Context, repo store.Repository, logger *slog.Logger) (*CatalogService, error) {
	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	c, err := catalog.Restore(snap.Books, snap.Counter)
	if err != nil {
		return nil, fmt.Errorf("restore catalog: %w", err)
	}

	pending := conflict.NewStore()
	for _, e := range snap.Conflicts {
		if _, ok := c.Get(e.ID); !ok {
			logger.Warn("dropping pending conflict without catalog record", "book_id", e.ID)
			continue
		}
		pending.Put(e)
	}

	logger.Info("catalog loaded",
		"books", c.Len(),
		"pending_conflicts", pending.Len(),
		"counter", c.Counter(),
	)

	return &CatalogService{
		repo:      repo,
		pipeline:  ingest.NewPipeline(logger),
		logger:    logger,
		now:       time.Now,
		catalog:   c,
		conflicts: pending,
	}, nil
}

// Ingest classifies a batch of rows, adds new records, and stages conflicts.
// The batch is persisted as a whole before it becomes visible; on a
// persistence failure nothing changes.
func (s *CatalogService) Ingest(ctx context.Context, rows []domain.Row) (*ingest.Result, error) {
	batchID, err := id.Generate(id.BatchPrefix)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate batch id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stagedCatalog := s.catalog.Clone()
	stagedConflicts := s.conflicts.Clone()

	result, changes, err := s.pipeline.Run(ctx, batchID, rows, stagedCatalog, stagedConflicts)
	if err != nil {
		return nil, fmt.Errorf("ingest batch %s: %w", batchID, err)
	}
	if changes.Empty() {
		return result, nil
	}

	cs := &store.Changeset{
		Books:        changes.Inserted,
		Counter:      changes.Counter,
		PutConflicts: changes.Staged,
	}
	if err := s.repo.Commit(ctx, cs); err != nil {
		s.logger.Error("failed to persist batch", "batch_id", batchID, "error", err)
		return nil, domainerrors.Persistence(err, "failed to persist ingestion batch")
	}

	s.catalog = stagedCatalog
	s.conflicts = stagedConflicts
	return result, nil
}

// ListConflicts returns all pending conflict entries.
func (s *CatalogService) ListConflicts(_ context.Context) []*domain.ConflictEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conflicts.List()
}

// Confirm applies the pending conflicts for ids. Identifiers without a
// pending entry are reported as not found.
func (s *CatalogService) Confirm(ctx context.Context, ids []string) (*ConfirmResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stagedCatalog := s.catalog.Clone()
	stagedConflicts := s.conflicts.Clone()

	applied, err := conflict.Apply(stagedCatalog, stagedConflicts, ids, s.now())
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to apply conflicts")
	}
	for _, bookID := range applied.NotFound {
		s.logger.Debug("confirm skipped", "error", domainerrors.UnknownIdentifier(bookID))
	}

	if len(applied.Updated) > 0 {
		cs := &store.Changeset{
			Books:           applied.Books,
			Counter:         stagedCatalog.Counter(),
			DeleteConflicts: applied.Updated,
		}
		if err := s.repo.Commit(ctx, cs); err != nil {
			s.logger.Error("failed to persist confirmation", "ids", applied.Updated, "error", err)
			return nil, domainerrors.Persistence(err, "failed to persist confirmation")
		}
		s.catalog = stagedCatalog
		s.conflicts = stagedConflicts
		s.logger.Info("conflicts confirmed", "updated", len(applied.Updated), "not_found", len(applied.NotFound))
	}

	return &ConfirmResult{
		Updated:            applied.Updated,
		NotFound:           applied.NotFound,
		RemainingConflicts: s.conflicts.Len(),
	}, nil
}

// Recommend scores every record against q.
func (s *CatalogService) Recommend(_ context.Context, q domain.PreferenceQuery) (*recommend.Ranking, error) {
	q.Length = domain.LengthCategory(strings.ToLower(strings.TrimSpace(string(q.Length))))
	if !q.Length.Valid() {
		return nil, domainerrors.ValidationWithDetails(
			fmt.Sprintf("unknown length category %q", q.Length),
			map[string]any{"allowed": []domain.LengthCategory{
				domain.LengthShort, domain.LengthMedium, domain.LengthLong, domain.LengthEpic, domain.LengthAny,
			}},
		)
	}

	s.mu.RLock()
	books := s.catalog.Books()
	s.mu.RUnlock()

	return recommend.Rank(books, q), nil
}

// ListBooks returns a page of the catalog, best rated first: personal rating
// descending, then popularity descending, then insertion order.
func (s *CatalogService) ListBooks(_ context.Context, params ListParams) *Page {
	params.Validate()

	s.mu.RLock()
	books := s.catalog.Books()
	s.mu.RUnlock()

	slices.SortStableFunc(books, func(a, b *domain.Book) int {
		if c := cmp.Compare(b.Float(domain.FieldPersonalRating), a.Float(domain.FieldPersonalRating)); c != 0 {
			return c
		}
		return cmp.Compare(popularity(b), popularity(a))
	})

	total := len(books)
	start := min(params.Offset, total)
	end := total
	if params.Limit > 0 {
		end = min(start+params.Limit, total)
	}

	return &Page{
		Items:   books[start:end],
		Total:   total,
		HasMore: end < total,
	}
}

// GetBook returns the record with the given identifier.
func (s *CatalogService) GetBook(_ context.Context, bookID string) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.catalog.Get(strings.TrimSpace(bookID))
	if !ok {
		return nil, domainerrors.NotFoundf("book %q not found", bookID)
	}
	return b.Clone(), nil
}

// Count returns the number of records.
func (s *CatalogService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Len()
}

// Health reports catalog size and storage reachability.
func (s *CatalogService) Health(ctx context.Context) Health {
	s.mu.RLock()
	h := Health{Books: s.catalog.Len(), PendingConflicts: s.conflicts.Len()}
	s.mu.RUnlock()

	h.StorageErr = s.repo.Ping(ctx)
	return h
}

// popularity weights the external average by how many ratings back it.
func popularity(b *domain.Book) float64 {
	count := b.Float(domain.FieldExternalRatingCount)
	if count < 0 {
		count = 0
	}
	return b.Float(domain.FieldExternalAvgRating) * math.Log1p(count)
}
