package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/shelfmatch/internal/domain"
)

func book(id string, row domain.Row) *domain.Book {
	return domain.NewBook(id, row, time.Now())
}

func mysteryQuery() domain.PreferenceQuery {
	return domain.PreferenceQuery{
		GenreIntent:   "mystery",
		Pace:          "fast",
		PlotCharacter: "plot",
		MoodFinish:    "tense",
		Length:        domain.LengthMedium,
	}
}

func TestScore_FourOfFive(t *testing.T) {
	b := book("1", domain.Row{
		domain.FieldGenreIntent:   "Mystery",
		domain.FieldPace:          "FAST",
		domain.FieldPlotCharacter: "plot",
		domain.FieldMoodFinish:    "hopeful",
		domain.FieldPageCount:     "250",
	})

	score, matched := Score(b, mysteryQuery())
	assert.Equal(t, 4, score)
	assert.Equal(t, []domain.Field{
		domain.FieldGenreIntent,
		domain.FieldPace,
		domain.FieldPlotCharacter,
		domain.FieldPageCount,
	}, matched)
}

func TestScore_MissingFieldsScoreZero(t *testing.T) {
	score, matched := Score(book("1", domain.Row{domain.FieldTitle: "Blank"}), mysteryQuery())
	assert.Equal(t, 0, score)
	assert.Empty(t, matched)
}

func TestScore_LengthBands(t *testing.T) {
	tests := []struct {
		pages  string
		length domain.LengthCategory
		want   int
	}{
		{"199", domain.LengthShort, 1},
		{"200", domain.LengthShort, 0},
		{"200", domain.LengthMedium, 0},
		{"201", domain.LengthMedium, 1},
		{"400", domain.LengthMedium, 1},
		{"401", domain.LengthLong, 1},
		{"600", domain.LengthLong, 1},
		{"601", domain.LengthEpic, 1},
		{"0", domain.LengthShort, 0},
		{"", domain.LengthShort, 0},
		{"lots", domain.LengthEpic, 0},
		{"800", domain.LengthAny, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.length)+"/"+tt.pages, func(t *testing.T) {
			b := book("1", domain.Row{domain.FieldPageCount: tt.pages})
			score, _ := Score(b, domain.PreferenceQuery{Length: tt.length})
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestRank_OrdersByScoreThenCatalogOrder(t *testing.T) {
	books := []*domain.Book{
		book("1", domain.Row{domain.FieldPace: "slow"}),
		book("2", domain.Row{domain.FieldPace: "fast", domain.FieldGenreIntent: "mystery"}),
		book("3", domain.Row{domain.FieldPace: "fast"}),
		book("4", domain.Row{}),
		book("5", domain.Row{domain.FieldGenreIntent: "mystery"}),
	}

	ranking := Rank(books, mysteryQuery())
	require.Len(t, ranking.Books, len(books))

	ids := make([]string, 0, len(ranking.Books))
	for _, s := range ranking.Books {
		ids = append(ids, s.Book.ID)
		assert.GreaterOrEqual(t, s.Score, 0)
		assert.LessOrEqual(t, s.Score, MaxScore)
	}
	assert.Equal(t, []string{"2", "3", "5", "1", "4"}, ids)
	assert.Equal(t, MaxScore, ranking.MaxScore)
}

func TestRank_Deterministic(t *testing.T) {
	books := []*domain.Book{
		book("1", domain.Row{domain.FieldPace: "fast"}),
		book("2", domain.Row{domain.FieldPace: "fast"}),
		book("3", domain.Row{domain.FieldMoodFinish: "tense"}),
	}
	assert.Equal(t, Rank(books, mysteryQuery()), Rank(books, mysteryQuery()))
}

func TestRank_InactiveCriteria(t *testing.T) {
	books := []*domain.Book{
		book("1", domain.Row{domain.FieldPace: "fast", domain.FieldGenreIntent: "any"}),
	}
	q := domain.PreferenceQuery{Pace: "fast", GenreIntent: "any", Length: domain.LengthAny}

	ranking := Rank(books, q)
	assert.Equal(t, 1, ranking.MaxScore)
	assert.Equal(t, 1, ranking.Books[0].Score)
}

func TestRank_EmptyCatalog(t *testing.T) {
	ranking := Rank(nil, mysteryQuery())
	assert.NotNil(t, ranking.Books)
	assert.Empty(t, ranking.Books)
}
