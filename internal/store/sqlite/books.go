package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, position,
	title, author, personal_rating, external_avg_rating, external_rating_count,
	page_count, genre_intent, pace, plot_character, mood_finish,
	created_at, updated_at`

// columnFields maps value columns, in bookColumns order, to schema fields.
//
//nolint:gochecknoglobals // Static column table
var columnFields = domain.ValueFields

// scanBook scans a row into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	b := &domain.Book{Values: make(map[domain.Field]string, len(columnFields))}

	values := make([]sql.NullString, len(columnFields))
	var createdAt, updatedAt string

	dest := make([]any, 0, len(columnFields)+4)
	dest = append(dest, &b.ID, &b.Position)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &createdAt, &updatedAt)

	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	for i, v := range values {
		if v.Valid && v.String != "" {
			b.Values[columnFields[i]] = v.String
		}
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, store.Corruptf("book %s created_at %q", b.ID, createdAt)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, store.Corruptf("book %s updated_at %q", b.ID, updatedAt)
	}
	return b, nil
}

func (s *Store) loadBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func upsertBook(ctx context.Context, tx *sql.Tx, b *domain.Book) error {
	args := make([]any, 0, len(columnFields)+4)
	args = append(args, b.ID, b.Position)
	for _, f := range columnFields {
		args = append(args, nullString(b.Values[f]))
	}
	args = append(args, formatTime(b.CreatedAt), formatTime(b.UpdatedAt))

	_, err := tx.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			position = excluded.position,
			title = excluded.title,
			author = excluded.author,
			personal_rating = excluded.personal_rating,
			external_avg_rating = excluded.external_avg_rating,
			external_rating_count = excluded.external_rating_count,
			page_count = excluded.page_count,
			genre_intent = excluded.genre_intent,
			pace = excluded.pace,
			plot_character = excluded.plot_character,
			mood_finish = excluded.mood_finish,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("upsert book %s: %w", b.ID, err)
	}
	return nil
}
