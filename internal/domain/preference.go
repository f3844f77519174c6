package domain

// LengthCategory is a named page-count band.
type LengthCategory string

// Length categories.
const (
	LengthShort  LengthCategory = "short"
	LengthMedium LengthCategory = "medium"
	LengthLong   LengthCategory = "long"
	LengthEpic   LengthCategory = "epic"
	LengthAny    LengthCategory = "any"
)

// Valid reports whether l is a recognised category. Empty and "any" are valid
// and mean no length preference.
func (l LengthCategory) Valid() bool {
	switch l {
	case LengthShort, LengthMedium, LengthLong, LengthEpic, LengthAny, "":
		return true
	default:
		return false
	}
}

// Active reports whether the category constrains page count.
func (l LengthCategory) Active() bool {
	return l != "" && l != LengthAny && l.Valid()
}

// Contains reports whether pages falls inside the band.
// Short is below 200, medium 201-400, long 401-600 and epic above 600.
func (l LengthCategory) Contains(pages int) bool {
	switch l {
	case LengthShort:
		return pages < 200
	case LengthMedium:
		return pages >= 201 && pages <= 400
	case LengthLong:
		return pages >= 401 && pages <= 600
	case LengthEpic:
		return pages > 600
	default:
		return false
	}
}

// PreferenceQuery describes what a reader is looking for.
type PreferenceQuery struct {
	GenreIntent   string         `json:"genre_intent"`
	Pace          string         `json:"pace"`
	PlotCharacter string         `json:"plot_character"`
	MoodFinish    string         `json:"mood_finish"`
	Length        LengthCategory `json:"length"`
}

// Criteria returns the text criteria paired with the catalog field each one matches.
func (q PreferenceQuery) Criteria() []Criterion {
	return []Criterion{
		{Field: FieldGenreIntent, Want: q.GenreIntent},
		{Field: FieldPace, Want: q.Pace},
		{Field: FieldPlotCharacter, Want: q.PlotCharacter},
		{Field: FieldMoodFinish, Want: q.MoodFinish},
	}
}

// Criterion is one text preference.
type Criterion struct {
	Field Field
	Want  string
}
