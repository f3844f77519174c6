package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/shelfmatch/internal/catalog"
	"github.com/listenupapp/shelfmatch/internal/domain"
)

func TestDiff(t *testing.T) {
	stored := domain.NewBook("7", domain.Row{
		domain.FieldTitle:               "Emma",
		domain.FieldAuthor:              "Jane Austen",
		domain.FieldPersonalRating:      "4",
		domain.FieldExternalRatingCount: "1200",
		domain.FieldPace:                "slow",
	}, time.Now())

	tests := []struct {
		name string
		row  domain.Row
		want domain.Differences
	}{
		{
			name: "identical",
			row:  domain.Row{domain.FieldTitle: "Emma", domain.FieldPace: "slow"},
			want: nil,
		},
		{
			name: "numeric float equality",
			row:  domain.Row{domain.FieldPersonalRating: "4.0"},
			want: nil,
		},
		{
			name: "numeric int equality",
			row:  domain.Row{domain.FieldExternalRatingCount: "1200.0"},
			want: nil,
		},
		{
			name: "float changed",
			row:  domain.Row{domain.FieldPersonalRating: "3.5"},
			want: domain.Differences{domain.FieldPersonalRating: {Old: "4", New: "3.5"}},
		},
		{
			name: "text is case sensitive",
			row:  domain.Row{domain.FieldPace: "Slow"},
			want: domain.Differences{domain.FieldPace: {Old: "slow", New: "Slow"}},
		},
		{
			name: "new value for missing field",
			row:  domain.Row{domain.FieldMoodFinish: "hopeful"},
			want: domain.Differences{domain.FieldMoodFinish: {Old: "", New: "hopeful"}},
		},
		{
			name: "blank incoming ignored",
			row:  domain.Row{domain.FieldPace: ""},
			want: nil,
		},
		{
			name: "identifier ignored",
			row:  domain.Row{domain.FieldIdentifier: "99"},
			want: nil,
		},
		{
			name: "nan against number differs",
			row:  domain.Row{domain.FieldPersonalRating: "NaN"},
			want: domain.Differences{domain.FieldPersonalRating: {Old: "4", New: "NaN"}},
		},
		{
			name: "unparsable numbers compare as text",
			row:  domain.Row{domain.FieldPersonalRating: "four"},
			want: domain.Differences{domain.FieldPersonalRating: {Old: "4", New: "four"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(stored, tt.row))
		})
	}
}

func TestResolve(t *testing.T) {
	byID := Resolve(domain.Row{domain.FieldIdentifier: " 12 ", domain.FieldTitle: "Emma"})
	assert.True(t, byID.ByIdentifier)
	assert.Equal(t, "12", byID.Key)

	a := Resolve(domain.Row{domain.FieldTitle: "Emma ", domain.FieldAuthor: "JANE AUSTEN"})
	b := Resolve(domain.Row{domain.FieldTitle: "emma", domain.FieldAuthor: " jane austen"})
	assert.False(t, a.ByIdentifier)
	assert.Equal(t, a, b)
}

func TestIdentityLookup(t *testing.T) {
	c := catalog.New()
	book := domain.NewBook(c.NextID(), domain.Row{domain.FieldTitle: "Emma", domain.FieldAuthor: "Jane Austen"}, time.Now())
	require.NoError(t, c.Insert(book))

	got, ok := Resolve(domain.Row{domain.FieldTitle: "EMMA", domain.FieldAuthor: "jane austen"}).Lookup(c)
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)

	got, ok = Resolve(domain.Row{domain.FieldIdentifier: "1"}).Lookup(c)
	require.True(t, ok)
	assert.Equal(t, "Emma", got.Title())

	_, ok = Resolve(domain.Row{domain.FieldIdentifier: "2", domain.FieldTitle: "Emma", domain.FieldAuthor: "Jane Austen"}).Lookup(c)
	assert.False(t, ok)
}

func TestDiff_NaNEqualsNaN(t *testing.T) {
	stored := domain.NewBook("1", domain.Row{
		domain.FieldTitle:             "Dune",
		domain.FieldPersonalRating:    "NaN",
		domain.FieldExternalAvgRating: "nan",
	}, time.Now())

	diffs := Diff(stored, domain.Row{
		domain.FieldPersonalRating:    "NaN",
		domain.FieldExternalAvgRating: "NaN",
	})
	assert.Nil(t, diffs)

	diffs = Diff(stored, domain.Row{domain.FieldPersonalRating: "4.2"})
	assert.Equal(t, domain.Differences{domain.FieldPersonalRating: {Old: "NaN", New: "4.2"}}, diffs)
}
