// Package csvimport turns spreadsheet exports into ingestion rows.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/listenupapp/shelfmatch/internal/domain"
	domainerrors "github.com/listenupapp/shelfmatch/internal/errors"
)

// utf8BOM is stripped from the start of the header row.
const utf8BOM = "\ufeff"

// Header describes how the columns of a file map onto the schema.
type Header struct {
	// Columns holds the schema field for each column; unknown columns are "".
	Columns []domain.Field
	// Ignored lists header names that matched no field.
	Ignored []string
}

// Parse reads a CSV document with a header row. Column names are matched
// case-insensitively against the schema and legacy export headers; unknown
// columns are ignored. A document without a header is a validation error;
// a header with no data rows yields an empty batch.
func Parse(r io.Reader) ([]domain.Row, *Header, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	names, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, domainerrors.Validation("csv file is empty")
	}
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "failed to read csv header")
	}

	header := parseHeader(names)
	if !header.has(domain.FieldTitle) && !header.has(domain.FieldAuthor) && !header.has(domain.FieldIdentifier) {
		return nil, nil, domainerrors.ValidationWithDetails(
			"csv header has no identifier, title or author column",
			map[string]any{"columns": names},
		)
	}

	rows := make([]domain.Row, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "failed to read csv line %d", len(rows)+2)
		}
		if blankRecord(record) {
			continue
		}
		rows = append(rows, header.row(record))
	}
	return rows, header, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) ([]domain.Row, *Header, error) {
	return Parse(bytes.NewReader(data))
}

func parseHeader(names []string) *Header {
	h := &Header{Columns: make([]domain.Field, len(names))}
	for i, name := range names {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		f, ok := domain.ParseField(name)
		if !ok || h.has(f) {
			h.Ignored = append(h.Ignored, strings.TrimSpace(name))
			continue
		}
		h.Columns[i] = f
	}
	return h
}

func (h *Header) has(f domain.Field) bool {
	for _, c := range h.Columns {
		if c == f {
			return true
		}
	}
	return false
}

func (h *Header) row(record []string) domain.Row {
	row := make(domain.Row, len(h.Columns))
	for i, f := range h.Columns {
		if f == "" || i >= len(record) {
			continue
		}
		row[f] = record[i]
	}
	return row
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// String renders the header mapping for logs.
func (h *Header) String() string {
	mapped := make([]string, 0, len(h.Columns))
	for _, c := range h.Columns {
		if c != "" {
			mapped = append(mapped, string(c))
		}
	}
	return fmt.Sprintf("columns=%v ignored=%v", mapped, h.Ignored)
}
