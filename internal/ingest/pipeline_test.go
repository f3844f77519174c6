package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/shelfmatch/internal/catalog"
	"github.com/listenupapp/shelfmatch/internal/conflict"
	"github.com/listenupapp/shelfmatch/internal/domain"
	domainerrors "github.com/listenupapp/shelfmatch/internal/errors"
)

func newTestPipeline() *Pipeline {
	p := NewPipeline(nil)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func duneRow() domain.Row {
	return domain.Row{
		domain.FieldTitle:          "Dune",
		domain.FieldAuthor:         "Frank Herbert",
		domain.FieldPersonalRating: "4.5",
		domain.FieldPace:           "slow",
	}
}

func run(t *testing.T, c *catalog.Catalog, s *conflict.Store, rows ...domain.Row) (*Result, *Changes) {
	t.Helper()
	result, changes, err := newTestPipeline().Run(context.Background(), "batch-test", rows, c, s)
	require.NoError(t, err)
	return result, changes
}

func TestRun_AddsNewRecords(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()

	result, changes := run(t, c, s, duneRow())

	require.Len(t, result.Added, 1)
	assert.Equal(t, "1", result.Added[0].ID)
	assert.Equal(t, 1, result.Added[0].Row)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Conflicted)
	assert.Equal(t, 1, c.Len())
	require.Len(t, changes.Inserted, 1)
	assert.Equal(t, uint64(1), changes.Counter)

	stored, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Dune", stored.Title())
	assert.Equal(t, "4.5", stored.Values[domain.FieldPersonalRating])
}

func TestRun_CaseInsensitiveDuplicateIsSkipped(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()
	run(t, c, s, duneRow())

	again := duneRow()
	again[domain.FieldTitle] = "  DUNE "
	again[domain.FieldAuthor] = "frank herbert"
	result, changes := run(t, c, s, again)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "1", result.Skipped[0].ID)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Conflicted)
	assert.True(t, changes.Empty())
	assert.Equal(t, 1, c.Len())
}

func TestRun_SameBatchDuplicateSeesEarlierRow(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()

	result, _ := run(t, c, s, duneRow(), duneRow())

	assert.Len(t, result.Added, 1)
	assert.Len(t, result.Skipped, 1)
	assert.Equal(t, 2, result.Skipped[0].Row)
	assert.Equal(t, 1, c.Len())
}

func TestRun_DifferingRowStagesConflict(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()
	run(t, c, s, duneRow())

	changed := duneRow()
	changed[domain.FieldPace] = "fast"
	result, changes := run(t, c, s, changed)

	require.Len(t, result.Conflicted, 1)
	out := result.Conflicted[0]
	assert.Equal(t, "1", out.ID)
	assert.Equal(t, domain.Differences{
		domain.FieldPace: {Old: "slow", New: "fast"},
	}, out.Differences)

	// The stored record is untouched until confirmation.
	stored, _ := c.Get("1")
	assert.Equal(t, "slow", stored.Values[domain.FieldPace])

	entry, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Dune", entry.Title)
	assert.Equal(t, "batch-test", entry.BatchID)
	require.Len(t, changes.Staged, 1)
	assert.Equal(t, 1, result.Summary.PendingConflicts)
}

func TestRun_NewerConflictReplacesPendingEntry(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()
	run(t, c, s, duneRow())

	first := duneRow()
	first[domain.FieldPace] = "fast"
	first[domain.FieldMoodFinish] = "hopeful"
	run(t, c, s, first)

	second := duneRow()
	second[domain.FieldPace] = "medium"
	_, changes := run(t, c, s, second)

	entry, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, domain.Differences{
		domain.FieldPace: {Old: "slow", New: "medium"},
	}, entry.Differences)
	assert.Equal(t, 1, s.Len())
	require.Len(t, changes.Staged, 1)
}

func TestRun_RepeatedConflictInOneBatchKeepsLast(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()
	run(t, c, s, duneRow())

	a := duneRow()
	a[domain.FieldPace] = "fast"
	b := duneRow()
	b[domain.FieldPace] = "medium"
	result, changes := run(t, c, s, a, b)

	assert.Len(t, result.Conflicted, 2)
	require.Len(t, changes.Staged, 1)
	assert.Equal(t, "medium", changes.Staged[0].Differences[domain.FieldPace].New)
}

func TestRun_ExplicitIdentifier(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()

	row := duneRow()
	row[domain.FieldIdentifier] = "42"
	result, _ := run(t, c, s, row)
	require.Len(t, result.Added, 1)
	assert.Equal(t, "42", result.Added[0].ID)

	// Sequential identifiers continue past the explicit one.
	other := domain.Row{domain.FieldTitle: "Emma", domain.FieldAuthor: "Jane Austen"}
	result, _ = run(t, c, s, other)
	require.Len(t, result.Added, 1)
	assert.Equal(t, "43", result.Added[0].ID)
}

func TestRun_IdentifierMatchIgnoresTitle(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()
	run(t, c, s, duneRow())

	renamed := duneRow()
	renamed[domain.FieldIdentifier] = "1"
	renamed[domain.FieldTitle] = "Dune (Deluxe)"
	result, _ := run(t, c, s, renamed)

	require.Len(t, result.Conflicted, 1)
	assert.Equal(t, "Dune", result.Conflicted[0].Differences[domain.FieldTitle].Old)
	assert.Equal(t, "Dune (Deluxe)", result.Conflicted[0].Differences[domain.FieldTitle].New)
}

func TestRun_RejectsRowsWithoutIdentity(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()

	result, _ := run(t, c, s,
		domain.Row{domain.FieldPace: "fast"},
		duneRow(),
	)

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 1, result.Rejected[0].Row)
	assert.Equal(t, domainerrors.CodeMalformedRow, result.Rejected[0].Code)
	assert.Len(t, result.Added, 1)
	assert.Equal(t, 2, result.Summary.Total)
}

func TestRun_BlankIncomingValuesNeverConflict(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()
	run(t, c, s, duneRow())

	sparse := domain.Row{
		domain.FieldTitle:  "Dune",
		domain.FieldAuthor: "Frank Herbert",
		domain.FieldPace:   "  ",
	}
	result, _ := run(t, c, s, sparse)
	assert.Len(t, result.Skipped, 1)
}

func TestRun_CountsAlwaysAddUp(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()
	run(t, c, s, duneRow())

	changed := duneRow()
	changed[domain.FieldPace] = "fast"
	rows := []domain.Row{
		duneRow(),
		changed,
		{domain.FieldTitle: "Emma", domain.FieldAuthor: "Jane Austen"},
		{},
	}
	result, _ := run(t, c, s, rows...)

	sum := result.Summary
	assert.Equal(t, len(rows), sum.Added+sum.Skipped+sum.Conflicted+sum.Rejected)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Conflicted)
	assert.Equal(t, 1, sum.Rejected)
	assert.Contains(t, sum.Message, "Processed 4 rows")
}

func TestRun_ReingestIsAllSkipped(t *testing.T) {
	c, s := catalog.New(), conflict.NewStore()
	rows := []domain.Row{
		duneRow(),
		{domain.FieldTitle: "Emma", domain.FieldAuthor: "Jane Austen", domain.FieldPageCount: "474"},
	}
	run(t, c, s, rows...)

	result, changes := run(t, c, s, rows...)
	assert.Len(t, result.Skipped, 2)
	assert.True(t, changes.Empty())
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestPipeline().Run(ctx, "batch-test", []domain.Row{duneRow()}, catalog.New(), conflict.NewStore())
	require.ErrorIs(t, err, context.Canceled)
}
