// Package recommend ranks catalog records against a reader's preferences.
package recommend

import (
	"slices"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/normalize"
)

// MaxScore is the highest score a record can earn when every criterion is active.
const MaxScore = 5

// Scored is a record annotated with its match score.
type Scored struct {
	Book    *domain.Book   `json:"book"`
	Score   int            `json:"match_score"`
	Matched []domain.Field `json:"matched"`
}

// Ranking is the result of scoring a whole catalog.
type Ranking struct {
	Query domain.PreferenceQuery `json:"query"`
	Books []Scored               `json:"books"`
	// MaxScore counts the active criteria of the query.
	MaxScore int `json:"max_score"`
}

// Score returns the match score of one record and the fields that matched.
// Text criteria match case-insensitively; blank values on either side never
// match. The length point needs a positive page count inside the band.
func Score(b *domain.Book, q domain.PreferenceQuery) (int, []domain.Field) {
	matched := make([]domain.Field, 0, MaxScore)
	for _, c := range q.Criteria() {
		if !active(c.Want) {
			continue
		}
		have, _ := b.Value(c.Field)
		if normalize.EqualFold(have, c.Want) {
			matched = append(matched, c.Field)
		}
	}
	if q.Length.Active() {
		if pages, ok := b.PageCount(); ok && q.Length.Contains(pages) {
			matched = append(matched, domain.FieldPageCount)
		}
	}
	return len(matched), matched
}

// Rank scores every record and orders them by descending score. Records with
// equal scores keep their catalog order; no record is dropped.
func Rank(books []*domain.Book, q domain.PreferenceQuery) *Ranking {
	scored := make([]Scored, 0, len(books))
	for _, b := range books {
		score, matched := Score(b, q)
		scored = append(scored, Scored{Book: b, Score: score, Matched: matched})
	}
	slices.SortStableFunc(scored, func(a, b Scored) int {
		return b.Score - a.Score
	})
	return &Ranking{Query: q, Books: scored, MaxScore: ActiveCriteria(q)}
}

// ActiveCriteria counts the criteria of q that can award a point.
func ActiveCriteria(q domain.PreferenceQuery) int {
	n := 0
	for _, c := range q.Criteria() {
		if active(c.Want) {
			n++
		}
	}
	if q.Length.Active() {
		n++
	}
	return n
}

// active reports whether a text criterion constrains the ranking. Blank and
// "any" mean no preference.
func active(want string) bool {
	w := normalize.Text(want)
	return w != "" && w != string(domain.LengthAny)
}
