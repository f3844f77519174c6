// Package domain contains the core entities of the shelfmatch catalog: book
// records, incoming rows, conflict entries and preference queries.
package domain

import (
	"maps"
	"strconv"
	"strings"
	"time"
)

// Field names a column of the fixed book schema.
type Field string

// Schema fields.
const (
	FieldIdentifier          Field = "identifier"
	FieldTitle               Field = "title"
	FieldAuthor              Field = "author"
	FieldPersonalRating      Field = "personal_rating"
	FieldExternalAvgRating   Field = "external_avg_rating"
	FieldExternalRatingCount Field = "external_rating_count"
	FieldPageCount           Field = "page_count"
	FieldGenreIntent         Field = "genre_intent"
	FieldPace                Field = "pace"
	FieldPlotCharacter       Field = "plot_character"
	FieldMoodFinish          Field = "mood_finish"
)

// Kind is the declared value type of a field, used for comparison.
type Kind int

// Field kinds.
const (
	KindString Kind = iota
	KindFloat
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	default:
		return "string"
	}
}

// Schema lists every field in canonical order.
//
//nolint:gochecknoglobals // Fixed schema table
var Schema = []Field{
	FieldIdentifier,
	FieldTitle,
	FieldAuthor,
	FieldPersonalRating,
	FieldExternalAvgRating,
	FieldExternalRatingCount,
	FieldPageCount,
	FieldGenreIntent,
	FieldPace,
	FieldPlotCharacter,
	FieldMoodFinish,
}

// ValueFields lists the schema fields stored in Book.Values (everything but the identifier).
//
//nolint:gochecknoglobals // Fixed schema table
var ValueFields = Schema[1:]

//nolint:gochecknoglobals // Fixed schema table
var fieldKinds = map[Field]Kind{
	FieldPersonalRating:      KindFloat,
	FieldExternalAvgRating:   KindFloat,
	FieldExternalRatingCount: KindInt,
	FieldPageCount:           KindInt,
}

// legacyColumns maps spreadsheet headers used by older exports to schema fields.
//
//nolint:gochecknoglobals // Static lookup table
var legacyColumns = map[string]Field{
	"book_id":                FieldIdentifier,
	"book_title":             FieldTitle,
	"book_author":            FieldAuthor,
	"sri_rating":             FieldPersonalRating,
	"goodreads_avg_rating":   FieldExternalAvgRating,
	"goodreads_rating_count": FieldExternalRatingCount,
}

// Kind returns the declared kind of the field.
func (f Field) Kind() Kind {
	return fieldKinds[f]
}

// Valid reports whether f is part of the schema.
func (f Field) Valid() bool {
	for _, s := range Schema {
		if s == f {
			return true
		}
	}
	return false
}

// ParseField resolves a column header to a schema field.
// Matching is case-insensitive and accepts legacy export headers.
func ParseField(name string) (Field, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if f := Field(key); f.Valid() {
		return f, true
	}
	f, ok := legacyColumns[key]
	return f, ok
}

// Row is one incoming record: schema field to raw string value.
// Columns absent from the source are simply missing from the map.
type Row map[Field]string

// Value returns the trimmed value for f. Blank values count as absent.
func (r Row) Value(f Field) (string, bool) {
	v, ok := r[f]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Identifier returns the explicit identifier carried by the row, if any.
func (r Row) Identifier() string {
	v, _ := r.Value(FieldIdentifier)
	return v
}

// Book is a catalog record.
type Book struct {
	ID        string           `json:"identifier"`
	Position  int64            `json:"position"`
	Values    map[Field]string `json:"values"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewBook builds a record from a row. Blank values are dropped.
func NewBook(id string, row Row, now time.Time) *Book {
	b := &Book{
		ID:        id,
		Values:    make(map[Field]string, len(ValueFields)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, f := range ValueFields {
		if v, ok := row.Value(f); ok {
			b.Values[f] = v
		}
	}
	return b
}

// Value returns the stored value for f.
func (b *Book) Value(f Field) (string, bool) {
	if f == FieldIdentifier {
		return b.ID, b.ID != ""
	}
	v, ok := b.Values[f]
	return v, ok && v != ""
}

// Title returns the stored title or "".
func (b *Book) Title() string {
	return b.Values[FieldTitle]
}

// Author returns the stored author or "".
func (b *Book) Author() string {
	return b.Values[FieldAuthor]
}

// PageCount returns the page count. Missing, unparsable or non-positive
// values report false.
func (b *Book) PageCount() (int, bool) {
	v, ok := b.Value(FieldPageCount)
	if !ok {
		return 0, false
	}
	n, ok := ParseInt(v)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}

// Float returns a float field, or 0 when missing or unparsable.
func (b *Book) Float(f Field) float64 {
	v, ok := b.Value(f)
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return n
}

// Clone returns a deep copy of the record.
func (b *Book) Clone() *Book {
	c := *b
	c.Values = maps.Clone(b.Values)
	if c.Values == nil {
		c.Values = make(map[Field]string)
	}
	return &c
}

// ParseInt parses an integer field value, accepting integral decimals such as "250.0".
func ParseInt(v string) (int, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
