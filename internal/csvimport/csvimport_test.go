package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/shelfmatch/internal/domain"
	domainerrors "github.com/listenupapp/shelfmatch/internal/errors"
)

func TestParse_CanonicalHeaders(t *testing.T) {
	doc := "title,author,page_count,pace\n" +
		"Dune,Frank Herbert,412,slow\n" +
		"Emma,Jane Austen,,\n"

	rows, header, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, header.Ignored)

	assert.Equal(t, "Dune", rows[0][domain.FieldTitle])
	assert.Equal(t, "412", rows[0][domain.FieldPageCount])
	_, hasPages := rows[1].Value(domain.FieldPageCount)
	assert.False(t, hasPages)
}

func TestParse_LegacyHeadersAndBOM(t *testing.T) {
	doc := "\ufeffbook_ID,book_title,book_author,sri_Rating,goodreads_avg_rating,goodreads_rating_count,Genre_Intent,Notes\n" +
		"7,Emma,Jane Austen,4.5,3.9,1200,romance,loved it\n"

	rows, header, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Notes"}, header.Ignored)

	row := rows[0]
	assert.Equal(t, "7", row.Identifier())
	assert.Equal(t, "Emma", row[domain.FieldTitle])
	assert.Equal(t, "4.5", row[domain.FieldPersonalRating])
	assert.Equal(t, "3.9", row[domain.FieldExternalAvgRating])
	assert.Equal(t, "1200", row[domain.FieldExternalRatingCount])
	assert.Equal(t, "romance", row[domain.FieldGenreIntent])
}

func TestParse_ShortAndBlankLines(t *testing.T) {
	doc := "title,author,pace\nDune,Frank Herbert\n,,\n"

	rows, _, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, hasPace := rows[0].Value(domain.FieldPace)
	assert.False(t, hasPace)
}

func TestParse_HeaderOnlyIsEmptyBatch(t *testing.T) {
	rows, _, err := Parse(strings.NewReader("title,author\n"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty file", ""},
		{"no identity columns", "pace,mood_finish\nfast,tense\n"},
		{"unbalanced quote", "title,author\n\"Dune,Frank Herbert\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
		})
	}
}
