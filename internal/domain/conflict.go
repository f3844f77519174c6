package domain

import "time"

// FieldChange is the stored and incoming value of one disputed field.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Differences maps each disputed field to its change.
type Differences map[Field]FieldChange

// Fields returns the disputed fields in schema order.
func (d Differences) Fields() []Field {
	out := make([]Field, 0, len(d))
	for _, f := range Schema {
		if _, ok := d[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ConflictEntry is a staged set of changes for one catalog record, waiting
// for confirmation. It is applied all-or-nothing.
type ConflictEntry struct {
	ID          string      `json:"identifier"`
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	Differences Differences `json:"differences"`
	BatchID     string      `json:"batch_id"`
	DetectedAt  time.Time   `json:"detected_at"`
}

// Clone returns a deep copy of the entry.
func (c *ConflictEntry) Clone() *ConflictEntry {
	out := *c
	out.Differences = make(Differences, len(c.Differences))
	for f, ch := range c.Differences {
		out.Differences[f] = ch
	}
	return &out
}
