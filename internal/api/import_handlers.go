package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/shelfmatch/internal/csvimport"
	"github.com/listenupapp/shelfmatch/internal/domain"
	domainerrors "github.com/listenupapp/shelfmatch/internal/errors"
	"github.com/listenupapp/shelfmatch/internal/ingest"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "importCSV",
		Method:       http.MethodPost,
		Path:         "/api/v1/imports",
		Summary:      "Import CSV",
		Description:  "Ingests a CSV document with a header row. New records are added, duplicates skipped and differing records staged as conflicts.",
		Tags:         []string{"Imports"},
		MaxBodyBytes: s.opts.MaxUploadBytes,
		Middlewares:  huma.Middlewares{s.rateLimited},
	}, s.handleImportCSV)

	huma.Register(s.api, huma.Operation{
		OperationID:  "importRows",
		Method:       http.MethodPost,
		Path:         "/api/v1/imports/rows",
		Summary:      "Import rows",
		Description:  "Ingests rows given as objects keyed by column name",
		Tags:         []string{"Imports"},
		MaxBodyBytes: s.opts.MaxUploadBytes,
		Middlewares:  huma.Middlewares{s.rateLimited},
	}, s.handleImportRows)
}

// === DTOs ===

// ImportCSVInput carries a raw CSV upload.
type ImportCSVInput struct {
	AdminKey string `header:"X-Admin-Key" doc:"Admin key"`
	RawBody  []byte `contentType:"text/csv"`
}

// ImportRowsRequest is the request body for JSON row ingestion.
type ImportRowsRequest struct {
	Rows []map[string]string `json:"rows" validate:"max=50000,dive,dive,keys,schemafield,endkeys" doc:"Rows keyed by column name"`
}

// ImportRowsInput wraps the import rows request for Huma.
type ImportRowsInput struct {
	AdminKey string `header:"X-Admin-Key" doc:"Admin key"`
	Body     ImportRowsRequest
}

// ImportResponse reports the classification of an ingested batch.
type ImportResponse struct {
	Summary        ingest.Summary    `json:"summary" doc:"Batch counts and message"`
	Added          []ingest.Outcome  `json:"added" doc:"Rows added as new records"`
	Skipped        []ingest.Outcome  `json:"skipped" doc:"Rows identical to a stored record"`
	Conflicted     []ingest.Outcome  `json:"conflicted" doc:"Rows staged as conflicts"`
	Rejected       []ingest.RowError `json:"rejected" doc:"Rows that could not be processed"`
	IgnoredColumns []string          `json:"ignored_columns,omitempty" doc:"CSV header names that matched no column"`
}

// ImportOutput wraps the import response for Huma.
type ImportOutput struct {
	Body ImportResponse
}

// === Handlers ===

func (s *Server) handleImportCSV(ctx context.Context, input *ImportCSVInput) (*ImportOutput, error) {
	if err := s.requireAdmin(input.AdminKey); err != nil {
		return nil, err
	}

	rows, header, err := csvimport.ParseBytes(input.RawBody)
	if err != nil {
		return nil, err
	}
	if len(rows) > MaxRowsPerRequest {
		return nil, domainerrors.ValidationWithDetails(
			"csv file has too many rows; split it into smaller files",
			map[string]any{"rows": len(rows), "max_rows": MaxRowsPerRequest},
		)
	}

	s.logger.Info("csv import received",
		"rows", len(rows),
		"columns", header.String(),
		"bytes", len(input.RawBody),
	)

	result, err := s.services.Catalog.Ingest(ctx, rows)
	if err != nil {
		return nil, err
	}

	resp := toImportResponse(result)
	resp.IgnoredColumns = header.Ignored
	return &ImportOutput{Body: resp}, nil
}

func (s *Server) handleImportRows(ctx context.Context, input *ImportRowsInput) (*ImportOutput, error) {
	if err := s.requireAdmin(input.AdminKey); err != nil {
		return nil, err
	}
	if err := s.validate(input.Body); err != nil {
		return nil, err
	}

	rows, err := toRows(input.Body.Rows)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Catalog.Ingest(ctx, rows)
	if err != nil {
		return nil, err
	}

	return &ImportOutput{Body: toImportResponse(result)}, nil
}

func toImportResponse(r *ingest.Result) ImportResponse {
	return ImportResponse{
		Summary:    r.Summary,
		Added:      nonNil(r.Added),
		Skipped:    nonNil(r.Skipped),
		Conflicted: nonNil(r.Conflicted),
		Rejected:   nonNil(r.Rejected),
	}
}

// nonNil keeps empty lists as [] rather than null on the wire.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// toRows maps column names onto schema fields. A column given twice under
// different spellings ("title" and "book_title") is rejected.
func toRows(in []map[string]string) ([]domain.Row, error) {
	rows := make([]domain.Row, len(in))
	for i, m := range in {
		row := make(domain.Row, len(m))
		for name, value := range m {
			f, ok := domain.ParseField(name)
			if !ok {
				return nil, domainerrors.Validationf("rows[%d]: unknown column %q", i, strings.TrimSpace(name))
			}
			if _, dup := row[f]; dup {
				return nil, domainerrors.Validationf("rows[%d]: column %q given more than once", i, f)
			}
			row[f] = value
		}
		rows[i] = row
	}
	return rows, nil
}
