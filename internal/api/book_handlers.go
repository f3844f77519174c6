package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns catalog records, best rated first",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a catalog record by identifier",
		Tags:        []string{"Books"},
	}, s.handleGetBook)
}

// === DTOs ===

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Offset int `query:"offset" minimum:"0" doc:"Records to skip"`
	Limit  int `query:"limit" minimum:"0" maximum:"1000" doc:"Page size, 0 for all"`
}

// BookResponse contains a catalog record in API responses.
type BookResponse struct {
	ID        string                  `json:"identifier" doc:"Book identifier"`
	Position  int64                   `json:"position" doc:"Insertion order"`
	Values    map[domain.Field]string `json:"values" doc:"Field values keyed by column name"`
	CreatedAt time.Time               `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time               `json:"updated_at" doc:"Last update time"`
}

// ListBooksResponse contains a page of books.
type ListBooksResponse struct {
	Books   []BookResponse `json:"books" doc:"Books on this page"`
	Total   int            `json:"total" doc:"Total records in the catalog"`
	Offset  int            `json:"offset" doc:"Records skipped"`
	Limit   int            `json:"limit" doc:"Page size"`
	HasMore bool           `json:"has_more" doc:"More records follow this page"`
}

// ListBooksOutput wraps the list books response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book identifier"`
}

// BookOutput wraps the book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	params := service.ListParams{Offset: input.Offset, Limit: input.Limit}
	params.Validate()

	page := s.services.Catalog.ListBooks(ctx, params)

	books := make([]BookResponse, len(page.Items))
	for i, b := range page.Items {
		books[i] = toBookResponse(b)
	}

	return &ListBooksOutput{Body: ListBooksResponse{
		Books:   books,
		Total:   page.Total,
		Offset:  params.Offset,
		Limit:   params.Limit,
		HasMore: page.HasMore,
	}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	b, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(b)}, nil
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:        b.ID,
		Position:  b.Position,
		Values:    b.Values,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
