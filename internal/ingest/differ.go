package ingest

import (
	"math"
	"strconv"

	"github.com/listenupapp/shelfmatch/internal/domain"
)

// comparator reports whether two non-blank values of one kind are equal.
type comparator func(stored, incoming string) bool

//nolint:gochecknoglobals // Static comparator table
var comparators = map[domain.Kind]comparator{
	domain.KindString: equalString,
	domain.KindFloat:  equalFloat,
	domain.KindInt:    equalInt,
}

// Diff compares an incoming row with the stored record that shares its
// identity. It returns nil when they are identical.
//
// Fields absent or blank in the row are left alone; the identifier is part
// of the identity and is never diffed.
func Diff(stored *domain.Book, row domain.Row) domain.Differences {
	var diffs domain.Differences
	for _, f := range domain.ValueFields {
		incoming, ok := row.Value(f)
		if !ok {
			continue
		}
		old, had := stored.Value(f)
		if had && comparators[f.Kind()](old, incoming) {
			continue
		}
		if diffs == nil {
			diffs = make(domain.Differences)
		}
		diffs[f] = domain.FieldChange{Old: old, New: incoming}
	}
	return diffs
}

func equalString(a, b string) bool {
	return a == b
}

// equalFloat compares numerically so "4.0" equals "4"; unparsable values
// fall back to string equality. Two NaNs are equal.
func equalFloat(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return a == b
	}
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return math.IsNaN(fa) && math.IsNaN(fb)
	}
	return fa == fb
}

func equalInt(a, b string) bool {
	ia, okA := domain.ParseInt(a)
	ib, okB := domain.ParseInt(b)
	if !okA || !okB {
		return a == b
	}
	return ia == ib
}
