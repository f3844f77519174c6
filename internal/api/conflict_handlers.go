package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/shelfmatch/internal/domain"
)

func (s *Server) registerConflictRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listConflicts",
		Method:      http.MethodGet,
		Path:        "/api/v1/conflicts",
		Summary:     "List conflicts",
		Description: "Returns pending conflicts with old and new values per differing field",
		Tags:        []string{"Conflicts"},
	}, s.handleListConflicts)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmConflicts",
		Method:      http.MethodPost,
		Path:        "/api/v1/conflicts/confirm",
		Summary:     "Confirm conflicts",
		Description: "Applies the pending changes for the given identifiers. Identifiers without a pending conflict are reported in not_found.",
		Tags:        []string{"Conflicts"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleConfirmConflicts)
}

// === DTOs ===

// ListConflictsResponse contains pending conflicts in detection order.
type ListConflictsResponse struct {
	Conflicts []*domain.ConflictEntry `json:"conflicts" doc:"Pending conflicts"`
	Total     int                     `json:"total" doc:"Number of pending conflicts"`
}

// ListConflictsOutput wraps the list conflicts response for Huma.
type ListConflictsOutput struct {
	Body ListConflictsResponse
}

// ConfirmRequest is the request body for confirming conflicts.
type ConfirmRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=10000,dive,nonblank" doc:"Identifiers to confirm"`
}

// ConfirmInput wraps the confirm request for Huma.
type ConfirmInput struct {
	AdminKey string `header:"X-Admin-Key" doc:"Admin key"`
	Body     ConfirmRequest
}

// ConfirmResponse reports the outcome of a confirmation.
type ConfirmResponse struct {
	Updated            []string `json:"updated" doc:"Identifiers whose records were updated"`
	NotFound           []string `json:"not_found" doc:"Identifiers without a pending conflict"`
	RemainingConflicts int      `json:"remaining_conflicts" doc:"Conflicts still pending"`
}

// ConfirmOutput wraps the confirm response for Huma.
type ConfirmOutput struct {
	Body ConfirmResponse
}

// === Handlers ===

func (s *Server) handleListConflicts(ctx context.Context, _ *struct{}) (*ListConflictsOutput, error) {
	conflicts := s.services.Catalog.ListConflicts(ctx)
	return &ListConflictsOutput{Body: ListConflictsResponse{
		Conflicts: nonNil(conflicts),
		Total:     len(conflicts),
	}}, nil
}

func (s *Server) handleConfirmConflicts(ctx context.Context, input *ConfirmInput) (*ConfirmOutput, error) {
	if err := s.requireAdmin(input.AdminKey); err != nil {
		return nil, err
	}
	if err := s.validate(input.Body); err != nil {
		return nil, err
	}

	result, err := s.services.Catalog.Confirm(ctx, input.Body.IDs)
	if err != nil {
		return nil, err
	}

	return &ConfirmOutput{Body: ConfirmResponse{
		Updated:            nonNil(result.Updated),
		NotFound:           nonNil(result.NotFound),
		RemainingConflicts: result.RemainingConflicts,
	}}, nil
}
